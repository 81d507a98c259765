package anomaly

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/stats"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// Rule is one independent detection. Rules see the whole evaluation input
// and must not depend on each other's output.
type Rule interface {
	Kind() models.AnomalyKind
	Evaluate(in *evaluation) []models.AnomalyRecord
}

// evaluation is the prepared, read-only input shared by every rule in a pass.
type evaluation struct {
	config   *compiled
	accounts map[string]models.AccountProfile
	logins   []models.LoginAttempt
	accesses []models.AccessEvent
	asOf     time.Time
}

func (e *evaluation) account(id string) (models.AccountProfile, bool) {
	a, ok := e.accounts[id]
	return a, ok
}

// BruteForceRule flags accounts with too many failed logins in the
// trailing brute-force window.
type BruteForceRule struct{}

func (BruteForceRule) Kind() models.AnomalyKind { return models.AnomalyLoginBruteForce }

func (BruteForceRule) Evaluate(in *evaluation) []models.AnomalyRecord {
	threshold := in.config.BruteForceFailureThreshold
	window := stats.Trailing(in.asOf, in.config.BruteForceWindow)

	type tally struct {
		count  int
		latest models.LoginAttempt
	}
	failures := make(map[string]*tally)

	for _, attempt := range in.logins {
		if attempt.Succeeded || !window.Contains(attempt.Timestamp) {
			continue
		}
		if _, ok := in.account(attempt.AccountID); !ok {
			continue
		}
		t, ok := failures[attempt.AccountID]
		if !ok {
			t = &tally{}
			failures[attempt.AccountID] = t
		}
		t.count++
		if attempt.Timestamp.After(t.latest.Timestamp) {
			t.latest = attempt
		}
	}

	var records []models.AnomalyRecord
	for _, accountID := range sortedKeys(failures) {
		t := failures[accountID]
		if t.count < threshold {
			continue
		}

		severity := models.SeverityHigh
		if t.count >= threshold+2 {
			severity = models.SeverityCritical
		}

		records = append(records, models.AnomalyRecord{
			AccountID: models.StringPtr(accountID),
			Kind:      models.AnomalyLoginBruteForce,
			Severity:  severity,
			Description: fmt.Sprintf(
				"%d failed login attempts for account %s within %s (threshold %d)",
				t.count, accountID, in.config.BruteForceWindow, threshold,
			),
			DetectedAt: t.latest.Timestamp,
		})
	}
	return records
}

// SensitiveReadBurstRule flags accounts reading too much data from
// sensitive resources in the trailing access window.
type SensitiveReadBurstRule struct{}

func (SensitiveReadBurstRule) Kind() models.AnomalyKind { return models.AnomalySensitiveReadBurst }

func (SensitiveReadBurstRule) Evaluate(in *evaluation) []models.AnomalyRecord {
	threshold := in.config.SensitiveBurstMB
	thresholdBytes := mbToBytes(threshold)

	type tally struct {
		totalBytes int64
		reads      int
		resources  map[string]struct{}
		latest     models.AccessEvent
	}
	bursts := make(map[string]*tally)

	for _, event := range in.accesses {
		if event.Action != models.ActionRead {
			continue
		}
		if _, ok := in.config.sensitive[event.ResourceName]; !ok {
			continue
		}
		if _, ok := in.account(event.AccountID); !ok {
			continue
		}
		t, ok := bursts[event.AccountID]
		if !ok {
			t = &tally{resources: make(map[string]struct{})}
			bursts[event.AccountID] = t
		}
		t.totalBytes = addBytes(t.totalBytes, mbToBytes(event.SizeMB()))
		t.reads++
		t.resources[event.ResourceName] = struct{}{}
		if event.Timestamp.After(t.latest.Timestamp) {
			t.latest = event
		}
	}

	var records []models.AnomalyRecord
	for _, accountID := range sortedKeys(bursts) {
		t := bursts[accountID]
		if t.totalBytes < thresholdBytes {
			continue
		}

		severity := models.SeverityMedium
		if float64(t.totalBytes) > 1.5*float64(thresholdBytes) {
			severity = models.SeverityHigh
		}

		records = append(records, models.AnomalyRecord{
			AccountID: models.StringPtr(accountID),
			Kind:      models.AnomalySensitiveReadBurst,
			Severity:  severity,
			Description: fmt.Sprintf(
				"Account %s read %.1f MB from %d sensitive resource(s) in %d reads within %s (threshold %.1f MB)",
				accountID, bytesToMB(t.totalBytes), len(t.resources), t.reads, in.config.AccessWindow, threshold,
			),
			DetectedAt: t.latest.Timestamp,
		})
	}
	return records
}

// RBACViolationRule flags accesses to resources the account's role is
// barred from. Violations by one account within the same minute share a
// record that lists every resource touched.
type RBACViolationRule struct{}

func (RBACViolationRule) Kind() models.AnomalyKind { return models.AnomalyRBACViolation }

func (RBACViolationRule) Evaluate(in *evaluation) []models.AnomalyRecord {
	type violation struct {
		account   models.AccountProfile
		first     models.AccessEvent
		count     int
		resources []string
	}
	type key struct {
		account string
		bucket  int64
	}

	var order []key
	grouped := make(map[key]*violation)

	for _, event := range in.accesses {
		account, ok := in.account(event.AccountID)
		if !ok {
			continue
		}
		restricted, ok := in.config.restricted[account.Role]
		if !ok {
			continue
		}
		if _, barred := restricted[event.ResourceName]; !barred {
			continue
		}

		k := key{account: account.ID, bucket: stats.MinuteBucket(event.Timestamp).Unix()}
		v, ok := grouped[k]
		if !ok {
			v = &violation{account: account, first: event}
			grouped[k] = v
			order = append(order, k)
		}
		v.count++
		if !slices.Contains(v.resources, event.ResourceName) {
			v.resources = append(v.resources, event.ResourceName)
		}
	}

	records := make([]models.AnomalyRecord, 0, len(order))
	for _, k := range order {
		v := grouped[k]
		description := fmt.Sprintf(
			"Account %s with role %s performed %s on restricted resource %s",
			v.account.ID, v.account.Role, v.first.Action, v.first.ResourceName,
		)
		if v.count > 1 {
			sort.Strings(v.resources)
			description = fmt.Sprintf(
				"Account %s with role %s made %d accesses to restricted resources %s within one minute",
				v.account.ID, v.account.Role, v.count, strings.Join(v.resources, ", "),
			)
		}

		records = append(records, models.AnomalyRecord{
			AccountID:   models.StringPtr(v.account.ID),
			Kind:        models.AnomalyRBACViolation,
			Severity:    models.SeverityHigh,
			Description: description,
			DetectedAt:  v.first.Timestamp,
		})
	}
	return records
}

// ExportSpikeRule flags single large exports by anyone, including
// accounts that are not in the monitored set.
type ExportSpikeRule struct{}

func (ExportSpikeRule) Kind() models.AnomalyKind { return models.AnomalyExportSpike }

func (ExportSpikeRule) Evaluate(in *evaluation) []models.AnomalyRecord {
	threshold := in.config.ExportSpikeMB
	thresholdBytes := mbToBytes(threshold)
	var records []models.AnomalyRecord

	for _, event := range in.accesses {
		if event.Action != models.ActionExport {
			continue
		}
		size := mbToBytes(event.SizeMB())
		if size < thresholdBytes {
			continue
		}

		severity := models.SeverityHigh
		if float64(size) > 2*float64(thresholdBytes) {
			severity = models.SeverityCritical
		}

		who := event.AccountID
		if who == "" {
			who = "unknown account"
		}

		records = append(records, models.AnomalyRecord{
			AccountID: models.StringPtr(event.AccountID),
			Kind:      models.AnomalyExportSpike,
			Severity:  severity,
			Description: fmt.Sprintf(
				"Export of %.1f MB from %s by %s (threshold %.1f MB)",
				bytesToMB(size), event.ResourceName, who, threshold,
			),
			DetectedAt: event.Timestamp,
		})
	}
	return records
}

// DefaultRules returns the four stock rules in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		BruteForceRule{},
		SensitiveReadBurstRule{},
		RBACViolationRule{},
		ExportSpikeRule{},
	}
}

const bytesPerMB = 1024 * 1024

// mbToBytes rounds a size in MB to whole bytes so that sums and
// threshold comparisons are exact. Sizes beyond int64 saturate.
func mbToBytes(mb float64) int64 {
	b := math.Round(mb * bytesPerMB)
	if b >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(b)
}

func bytesToMB(b int64) float64 {
	return float64(b) / bytesPerMB
}

func addBytes(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func validSize(size *float64) bool {
	if size == nil {
		return true
	}
	return *size >= 0 && !math.IsNaN(*size) && !math.IsInf(*size, 0)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
