package simulator

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

type Config struct {
	Seed            int64
	Shipments       int
	ActiveShipments int
	Accounts        int
	Pattern         string
	InjectAttacks   bool
	// Lookback bounds how far before asOf security traffic is spread.
	Lookback time.Duration
}

// Dataset is one generated world: completed and in-flight shipments plus
// the security traffic of the monitored accounts.
type Dataset struct {
	Shipments []models.Shipment        `json:"shipments"`
	Accounts  []models.AccountProfile  `json:"accounts"`
	Logins    []models.LoginAttempt    `json:"logins"`
	Accesses  []models.AccessEvent     `json:"accesses"`
	AsOf      time.Time                `json:"as_of"`
	Snapshot  *models.SecuritySnapshot `json:"-"`
}

type Generator struct {
	config  Config
	pattern Pattern
	rng     *rand.Rand
	mu      sync.Mutex
}

var (
	routes = []struct{ code, origin, destination string }{
		{"SEA-PDX", "Seattle", "Portland"},
		{"SEA-SFO", "Seattle", "San Francisco"},
		{"TAC-BOI", "Tacoma", "Boise"},
		{"SPK-SEA", "Spokane", "Seattle"},
		{"PDX-SLC", "Portland", "Salt Lake City"},
	}

	usernames = []string{
		"avery", "blake", "casey", "devon", "emery", "finley",
		"harper", "jordan", "kendall", "logan", "morgan", "parker",
		"quinn", "reese", "rowan", "sage",
	}

	routineResources = []string{"route_schedules", "fleet_status", "warehouse_inventory", "dock_assignments"}
	sensitiveReads   = []string{"customer_records", "shipment_manifests"}
)

func New(cfg Config) *Generator {
	if cfg.Shipments == 0 {
		cfg.Shipments = 60
	}
	if cfg.ActiveShipments == 0 {
		cfg.ActiveShipments = 8
	}
	if cfg.Accounts == 0 {
		cfg.Accounts = 12
	}
	if cfg.Accounts < 4 {
		cfg.Accounts = 4
	}
	if cfg.Lookback == 0 {
		cfg.Lookback = 15 * time.Minute
	}

	return &Generator{
		config:  cfg,
		pattern: ParsePattern(cfg.Pattern),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
}

func (g *Generator) Config() Config {
	return g.config
}

// Generate builds a dataset ending at asOf. It draws from a fresh source
// seeded with Config.Seed, so equal seeds and asOf give equal datasets.
func (g *Generator) Generate(asOf time.Time) *Dataset {
	rng := rand.New(rand.NewSource(g.config.Seed))
	asOf = asOf.UTC().Truncate(time.Second)

	ds := &Dataset{AsOf: asOf}
	ds.Shipments = g.shipments(rng, asOf)
	ds.Accounts = g.accounts()
	ds.Logins, ds.Accesses = g.traffic(rng, ds.Accounts, asOf.Add(-g.config.Lookback), asOf)

	if g.config.InjectAttacks {
		logins, accesses := InjectAttacks(ds.Accounts, asOf)
		ds.Logins = append(ds.Logins, logins...)
		ds.Accesses = append(ds.Accesses, accesses...)
	}

	ds.Snapshot = &models.SecuritySnapshot{
		Accounts: ds.Accounts,
		Logins:   ds.Logins,
		Accesses: ds.Accesses,
	}

	logger.WithFields(map[string]interface{}{
		"shipments": len(ds.Shipments),
		"accounts":  len(ds.Accounts),
		"logins":    len(ds.Logins),
		"accesses":  len(ds.Accesses),
		"pattern":   g.pattern.Name(),
	}).Debug("Generated synthetic dataset")

	return ds
}

// Traffic produces routine security traffic between from and to. Unlike
// Generate it advances the generator's own source, so successive calls
// differ; it is meant for live demo feeds.
func (g *Generator) Traffic(from, to time.Time) ([]models.LoginAttempt, []models.AccessEvent) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.traffic(g.rng, g.accounts(), from, to)
}

func (g *Generator) shipments(rng *rand.Rand, asOf time.Time) []models.Shipment {
	n := g.config.Shipments
	shipments := make([]models.Shipment, 0, n+g.config.ActiveShipments)

	// Completed shipments every two hours, oldest first, ending before asOf.
	first := asOf.Add(-time.Duration(n+1) * 2 * time.Hour)
	for i := 0; i < n; i++ {
		route := routes[i%len(routes)]
		expected := first.Add(time.Duration(i) * 2 * time.Hour)
		delay := g.pattern.Delay(rng, i, n)
		actual := expected.Add(time.Duration(delay * float64(time.Minute))).Truncate(time.Second)

		status := models.ShipmentDelivered
		if delay > 30 {
			status = models.ShipmentDelayed
		}

		shipments = append(shipments, models.Shipment{
			ID:           fmt.Sprintf("SHP-%05d", i+1),
			RouteCode:    route.code,
			Origin:       route.origin,
			Destination:  route.destination,
			Status:       status,
			ExpectedTime: expected,
			ActualTime:   &actual,
			CreatedAt:    expected.Add(-48 * time.Hour),
		})
	}

	// In-flight shipments: some overdue, some still due.
	for i := 0; i < g.config.ActiveShipments; i++ {
		route := routes[(n+i)%len(routes)]
		offset := time.Duration(rng.Intn(150)-90) * time.Minute
		expected := asOf.Add(offset)

		shipments = append(shipments, models.Shipment{
			ID:           fmt.Sprintf("SHP-%05d", n+i+1),
			RouteCode:    route.code,
			Origin:       route.origin,
			Destination:  route.destination,
			Status:       models.ShipmentInTransit,
			ExpectedTime: expected,
			CreatedAt:    expected.Add(-48 * time.Hour),
		})
	}

	return shipments
}

func (g *Generator) accounts() []models.AccountProfile {
	roles := []models.Role{models.RoleAdmin, models.RoleAnalyst, models.RoleOperator}
	accounts := make([]models.AccountProfile, g.config.Accounts)
	for i := range accounts {
		name := usernames[i%len(usernames)]
		if i >= len(usernames) {
			name = fmt.Sprintf("%s%d", name, i/len(usernames))
		}
		accounts[i] = models.AccountProfile{
			ID:       fmt.Sprintf("acct-%03d", i+1),
			Username: name,
			Email:    name + "@sentinel.example",
			Role:     roles[i%len(roles)],
		}
	}
	return accounts
}

// traffic stays below every default rule threshold: at most one failed
// login and two small sensitive reads per account, no large exports, and
// operators never touch restricted resources.
func (g *Generator) traffic(rng *rand.Rand, accounts []models.AccountProfile, from, to time.Time) ([]models.LoginAttempt, []models.AccessEvent) {
	span := to.Sub(from)
	if span <= 0 {
		return nil, nil
	}
	at := func() time.Time {
		return from.Add(time.Duration(rng.Int63n(int64(span)))).Truncate(time.Second)
	}

	var logins []models.LoginAttempt
	var accesses []models.AccessEvent

	for i, account := range accounts {
		ip := fmt.Sprintf("10.0.%d.%d", i/250, i%250+10)

		logins = append(logins, models.LoginAttempt{
			AccountID: account.ID,
			Succeeded: true,
			IPAddress: ip,
			Timestamp: at(),
		})
		if rng.Intn(4) == 0 {
			logins = append(logins, models.LoginAttempt{
				AccountID: account.ID,
				Succeeded: false,
				IPAddress: ip,
				Timestamp: at(),
			})
		}

		for j := 0; j < 2+rng.Intn(4); j++ {
			accesses = append(accesses, models.AccessEvent{
				AccountID:      account.ID,
				Action:         models.ActionRead,
				ResourceName:   routineResources[rng.Intn(len(routineResources))],
				SizeEstimateMB: models.Float64Ptr(0.5 + rng.Float64()*4.5),
				Timestamp:      at(),
			})
		}

		if account.Role != models.RoleOperator {
			for j := 0; j < rng.Intn(3); j++ {
				accesses = append(accesses, models.AccessEvent{
					AccountID:      account.ID,
					Action:         models.ActionRead,
					ResourceName:   sensitiveReads[rng.Intn(len(sensitiveReads))],
					SizeEstimateMB: models.Float64Ptr(1 + rng.Float64()*9),
					Timestamp:      at(),
				})
			}
		}

		if account.Role == models.RoleAnalyst && rng.Intn(3) == 0 {
			accesses = append(accesses, models.AccessEvent{
				AccountID:      account.ID,
				Action:         models.ActionExport,
				ResourceName:   "route_schedules",
				SizeEstimateMB: models.Float64Ptr(5 + rng.Float64()*45),
				Timestamp:      at(),
			})
		}
	}

	return logins, accesses
}
