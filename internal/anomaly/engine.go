package anomaly

import (
	"sort"
	"strings"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/logger"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/stats"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// Engine runs every configured rule over a security snapshot. An Engine
// holds only its compiled configuration, so one instance may serve
// concurrent evaluations.
type Engine struct {
	config *compiled
	rules  []Rule
}

func NewEngine(cfg RuleConfig, rules ...Rule) (*Engine, error) {
	c, err := compile(cfg)
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Engine{config: c, rules: rules}, nil
}

// Config returns the effective configuration with defaults applied.
func (e *Engine) Config() RuleConfig {
	return e.config.RuleConfig
}

// Evaluate is the one-shot form of NewEngine followed by Engine.Evaluate.
func Evaluate(
	accounts []models.AccountProfile,
	logins []models.LoginAttempt,
	accesses []models.AccessEvent,
	cfg RuleConfig,
	asOf time.Time,
) ([]models.AnomalyRecord, error) {
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return engine.Evaluate(models.SecuritySnapshot{
		Accounts: accounts,
		Logins:   logins,
		Accesses: accesses,
	}, asOf), nil
}

// Evaluate runs all rules as of the given instant and returns the
// deduplicated anomalies, most recent first. A zero asOf means "the
// latest timestamp present in the snapshot".
func (e *Engine) Evaluate(snapshot models.SecuritySnapshot, asOf time.Time) []models.AnomalyRecord {
	if asOf.IsZero() {
		asOf = latestTimestamp(snapshot)
	}

	in := e.prepare(snapshot, asOf)

	var raw []models.AnomalyRecord
	for _, rule := range e.rules {
		found := rule.Evaluate(in)
		if len(found) > 0 {
			logger.WithEngine("anomaly").Debugf("Rule %s produced %d detection(s)", rule.Kind(), len(found))
		}
		raw = append(raw, found...)
	}

	records := Deduplicate(raw)
	SortRecords(records)
	return records
}

// prepare indexes accounts and drops malformed or out-of-window events.
// The snapshot itself is never modified.
func (e *Engine) prepare(snapshot models.SecuritySnapshot, asOf time.Time) *evaluation {
	accounts := make(map[string]models.AccountProfile, len(snapshot.Accounts))
	for _, a := range snapshot.Accounts {
		if strings.TrimSpace(a.ID) == "" {
			continue
		}
		accounts[a.ID] = a
	}

	loginWindow := stats.Trailing(asOf, e.config.BruteForceWindow)
	logins := make([]models.LoginAttempt, 0, len(snapshot.Logins))
	for _, l := range snapshot.Logins {
		if l.Timestamp.IsZero() || !loginWindow.Contains(l.Timestamp) {
			continue
		}
		logins = append(logins, l)
	}

	accessWindow := stats.Trailing(asOf, e.config.AccessWindow)
	accesses := make([]models.AccessEvent, 0, len(snapshot.Accesses))
	skipped := 0
	for _, a := range snapshot.Accesses {
		if a.Timestamp.IsZero() || !accessWindow.Contains(a.Timestamp) {
			continue
		}
		if !a.Action.Valid() || !validSize(a.SizeEstimateMB) {
			skipped++
			continue
		}
		accesses = append(accesses, a)
	}
	if skipped > 0 {
		logger.WithEngine("anomaly").Debugf("Skipped %d malformed access event(s)", skipped)
	}

	return &evaluation{
		config:   e.config,
		accounts: accounts,
		logins:   logins,
		accesses: accesses,
		asOf:     asOf,
	}
}

type dedupKey struct {
	kind    models.AnomalyKind
	account string
	bucket  int64
}

// Deduplicate collapses records sharing (kind, account, minute bucket),
// keeping the most severe and, among equals, the first seen.
func Deduplicate(records []models.AnomalyRecord) []models.AnomalyRecord {
	index := make(map[dedupKey]int, len(records))
	out := make([]models.AnomalyRecord, 0, len(records))

	for _, r := range records {
		key := dedupKey{
			kind:    r.Kind,
			account: r.Account(),
			bucket:  r.Bucket().Unix(),
		}
		if i, seen := index[key]; seen {
			if r.Severity.Rank() > out[i].Severity.Rank() {
				out[i] = r
			}
			continue
		}
		index[key] = len(out)
		out = append(out, r)
	}
	return out
}

// SortRecords orders by detection time descending, then severity
// descending. Kind and account break any remaining ties so the order is
// fully deterministic.
func SortRecords(records []models.AnomalyRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.DetectedAt.Equal(b.DetectedAt) {
			return a.DetectedAt.After(b.DetectedAt)
		}
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Account() < b.Account()
	})
}

func latestTimestamp(snapshot models.SecuritySnapshot) time.Time {
	var latest time.Time
	for _, l := range snapshot.Logins {
		latest = stats.Latest(latest, l.Timestamp)
	}
	for _, a := range snapshot.Accesses {
		latest = stats.Latest(latest, a.Timestamp)
	}
	return latest
}
