package anomaly

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

var asOf = time.Date(2026, time.March, 2, 14, 30, 0, 0, time.UTC)

// Kept as variables so arithmetic on them happens in float64 at run time.
var tenthMB, threeTenthsMB = 0.1, 0.3

func repeatSize(size float64, n int) []float64 {
	sizes := make([]float64, n)
	for i := range sizes {
		sizes[i] = size
	}
	return sizes
}

func accounts() []models.AccountProfile {
	return []models.AccountProfile{
		{ID: "A", Username: "alice", Role: models.RoleAnalyst},
		{ID: "B", Username: "bob", Role: models.RoleOperator},
		{ID: "C", Username: "carol", Role: models.RoleAdmin},
	}
}

func failedLogins(accountID string, n int, at time.Time) []models.LoginAttempt {
	logins := make([]models.LoginAttempt, 0, n)
	for i := 0; i < n; i++ {
		logins = append(logins, models.LoginAttempt{
			AccountID: accountID,
			Succeeded: false,
			IPAddress: "10.0.0.9",
			Timestamp: at.Add(time.Duration(i) * time.Second),
		})
	}
	return logins
}

func access(accountID string, action models.AccessAction, resource string, sizeMB float64, at time.Time) models.AccessEvent {
	return models.AccessEvent{
		AccountID:      accountID,
		Action:         action,
		ResourceName:   resource,
		SizeEstimateMB: models.Float64Ptr(sizeMB),
		Timestamp:      at,
	}
}

func ofKind(records []models.AnomalyRecord, kind models.AnomalyKind) []models.AnomalyRecord {
	var out []models.AnomalyRecord
	for _, r := range records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

func TestEvaluate_BruteForce(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		want     models.Severity
		detected bool
	}{
		{name: "below threshold", failures: 4, detected: false},
		{name: "at threshold", failures: 5, want: models.SeverityHigh, detected: true},
		{name: "six failures", failures: 6, want: models.SeverityHigh, detected: true},
		{name: "threshold plus two", failures: 7, want: models.SeverityCritical, detected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logins := failedLogins("A", tt.failures, asOf.Add(-3*time.Minute))

			records, err := Evaluate(accounts(), logins, nil, RuleConfig{BruteForceFailureThreshold: 5}, asOf)
			require.NoError(t, err)

			found := ofKind(records, models.AnomalyLoginBruteForce)
			if !tt.detected {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, "A", found[0].Account())
			assert.Equal(t, tt.want, found[0].Severity)
			assert.Contains(t, found[0].Description, "A")
		})
	}
}

func TestEvaluate_BruteForceIgnoresOldAndSuccessfulAttempts(t *testing.T) {
	logins := failedLogins("A", 4, asOf.Add(-2*time.Minute))
	logins = append(logins, failedLogins("A", 3, asOf.Add(-11*time.Minute))...)
	logins = append(logins, models.LoginAttempt{AccountID: "A", Succeeded: true, Timestamp: asOf.Add(-time.Minute)})

	records, err := Evaluate(accounts(), logins, nil, RuleConfig{}, asOf)
	require.NoError(t, err)
	assert.Empty(t, ofKind(records, models.AnomalyLoginBruteForce))
}

func TestEvaluate_BruteForceDetectedAtLatestFailure(t *testing.T) {
	logins := failedLogins("A", 6, asOf.Add(-4*time.Minute))

	records, err := Evaluate(accounts(), logins, nil, RuleConfig{}, asOf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, asOf.Add(-4*time.Minute+5*time.Second), records[0].DetectedAt)
}

func TestEvaluate_Deduplication(t *testing.T) {
	base := asOf.Add(-2 * time.Minute)
	logins := failedLogins("A", 5, base)

	t.Run("duplicated input collapses to one record", func(t *testing.T) {
		doubled := append(append([]models.LoginAttempt{}, logins...), logins...)

		records, err := Evaluate(accounts(), doubled, nil, RuleConfig{}, asOf)
		require.NoError(t, err)
		assert.Len(t, ofKind(records, models.AnomalyLoginBruteForce), 1)
	})

	t.Run("overlapping calls share a key", func(t *testing.T) {
		first, err := Evaluate(accounts(), logins, nil, RuleConfig{}, asOf)
		require.NoError(t, err)

		overlap := append(append([]models.LoginAttempt{}, logins[2:]...), logins[:3]...)
		second, err := Evaluate(accounts(), overlap, nil, RuleConfig{}, asOf.Add(30*time.Second))
		require.NoError(t, err)

		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].Bucket(), second[0].Bucket())

		merged := Deduplicate(append(first, second...))
		assert.Len(t, merged, 1)
	})
}

func TestDeduplicate_KeepsHighestSeverity(t *testing.T) {
	at := asOf.Add(-time.Minute)
	records := []models.AnomalyRecord{
		{AccountID: models.StringPtr("A"), Kind: models.AnomalyExportSpike, Severity: models.SeverityHigh, Description: "first", DetectedAt: at},
		{AccountID: models.StringPtr("A"), Kind: models.AnomalyExportSpike, Severity: models.SeverityCritical, Description: "second", DetectedAt: at.Add(10 * time.Second)},
		{AccountID: models.StringPtr("A"), Kind: models.AnomalyExportSpike, Severity: models.SeverityCritical, Description: "third", DetectedAt: at.Add(20 * time.Second)},
		{AccountID: models.StringPtr("B"), Kind: models.AnomalyExportSpike, Severity: models.SeverityHigh, Description: "other account", DetectedAt: at},
	}

	out := Deduplicate(records)
	require.Len(t, out, 2)
	assert.Equal(t, "second", out[0].Description)
	assert.Equal(t, "other account", out[1].Description)
}

func TestEvaluate_SensitiveReadBurstBoundary(t *testing.T) {
	const oneByteMB = 1.0 / (1024 * 1024)

	tests := []struct {
		name      string
		sizes     []float64
		threshold float64
		want      models.Severity
		detected  bool
	}{
		{name: "exactly at threshold", sizes: []float64{60, 40}, want: models.SeverityMedium, detected: true},
		{name: "decimal sizes summing to threshold", sizes: repeatSize(10.1, 10), threshold: 101, want: models.SeverityMedium, detected: true},
		{name: "one byte under", sizes: []float64{60, 40 - oneByteMB}, detected: false},
		{name: "exactly one and a half times", sizes: []float64{100, 50}, want: models.SeverityMedium, detected: true},
		{name: "above one and a half times", sizes: []float64{100, 60}, want: models.SeverityHigh, detected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var events []models.AccessEvent
			for i, size := range tt.sizes {
				at := asOf.Add(-time.Minute - time.Duration(i)*time.Second)
				events = append(events, access("A", models.ActionRead, "customer_records", size, at))
			}

			threshold := tt.threshold
			if threshold == 0 {
				threshold = 100
			}
			records, err := Evaluate(accounts(), nil, events, RuleConfig{SensitiveBurstMB: threshold}, asOf)
			require.NoError(t, err)

			found := ofKind(records, models.AnomalySensitiveReadBurst)
			if !tt.detected {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, tt.want, found[0].Severity)
			assert.Equal(t, asOf.Add(-time.Minute), found[0].DetectedAt)
		})
	}
}

func TestEvaluate_SensitiveReadBurstFilters(t *testing.T) {
	events := []models.AccessEvent{
		access("A", models.ActionRead, "public_schedule", 500, asOf.Add(-time.Minute)),
		access("A", models.ActionWrite, "customer_records", 500, asOf.Add(-time.Minute)),
		access("A", models.ActionRead, "customer_records", 500, asOf.Add(-6*time.Minute)),
		access("ghost", models.ActionRead, "customer_records", 500, asOf.Add(-time.Minute)),
	}

	records, err := Evaluate(accounts(), nil, events, RuleConfig{}, asOf)
	require.NoError(t, err)
	assert.Empty(t, ofKind(records, models.AnomalySensitiveReadBurst))
}

func TestEvaluate_RBACViolation(t *testing.T) {
	cfg := RuleConfig{
		RestrictedResourcesByRole: map[models.Role][]string{
			models.RoleOperator: {"financial_reports"},
			models.RoleAnalyst:  {},
		},
	}
	events := []models.AccessEvent{
		access("B", models.ActionRead, "financial_reports", 1, asOf.Add(-4*time.Minute)),
		access("B", models.ActionWrite, "financial_reports", 1, asOf.Add(-2*time.Minute)),
		access("B", models.ActionRead, "shipment_manifests", 1, asOf.Add(-time.Minute)),
		access("A", models.ActionRead, "financial_reports", 1, asOf.Add(-time.Minute)),
		access("C", models.ActionRead, "financial_reports", 1, asOf.Add(-time.Minute)),
	}

	records, err := Evaluate(accounts(), nil, events, cfg, asOf)
	require.NoError(t, err)

	found := ofKind(records, models.AnomalyRBACViolation)
	require.Len(t, found, 2)
	for _, r := range found {
		assert.Equal(t, "B", r.Account())
		assert.Equal(t, models.SeverityHigh, r.Severity)
	}
	assert.Equal(t, asOf.Add(-2*time.Minute), found[0].DetectedAt)
	assert.Equal(t, asOf.Add(-4*time.Minute), found[1].DetectedAt)
}

func TestEvaluate_RBACViolationsInOneMinuteShareARecord(t *testing.T) {
	cfg := RuleConfig{
		RestrictedResourcesByRole: map[models.Role][]string{
			models.RoleOperator: {"financial_reports", "driver_personnel_files"},
		},
	}
	minute := asOf.Add(-3 * time.Minute)
	events := []models.AccessEvent{
		access("B", models.ActionRead, "financial_reports", 1, minute.Add(5*time.Second)),
		access("B", models.ActionRead, "driver_personnel_files", 1, minute.Add(20*time.Second)),
		access("B", models.ActionWrite, "financial_reports", 1, minute.Add(40*time.Second)),
	}

	records, err := Evaluate(accounts(), nil, events, cfg, asOf)
	require.NoError(t, err)

	found := ofKind(records, models.AnomalyRBACViolation)
	require.Len(t, found, 1)
	assert.Equal(t, minute.Add(5*time.Second), found[0].DetectedAt)
	assert.Contains(t, found[0].Description, "3 accesses")
	assert.Contains(t, found[0].Description, "driver_personnel_files, financial_reports")
}

func TestEvaluate_ExportSpike(t *testing.T) {
	tests := []struct {
		name      string
		sizeMB    float64
		threshold float64
		want      models.Severity
		detected  bool
	}{
		{name: "below threshold", sizeMB: 199.9, detected: false},
		{name: "inexact decimal at threshold", sizeMB: threeTenthsMB - tenthMB, threshold: 0.2, want: models.SeverityHigh, detected: true},
		{name: "at threshold", sizeMB: 200, want: models.SeverityHigh, detected: true},
		{name: "exactly double", sizeMB: 400, want: models.SeverityHigh, detected: true},
		{name: "450 MB", sizeMB: 450, want: models.SeverityCritical, detected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := []models.AccessEvent{
				access("C", models.ActionExport, "shipment_manifests", tt.sizeMB, asOf.Add(-time.Minute)),
			}

			threshold := tt.threshold
			if threshold == 0 {
				threshold = 200
			}
			records, err := Evaluate(accounts(), nil, events, RuleConfig{ExportSpikeMB: threshold}, asOf)
			require.NoError(t, err)

			if !tt.detected {
				assert.Empty(t, records)
				return
			}
			require.Len(t, records, 1)
			assert.Equal(t, models.AnomalyExportSpike, records[0].Kind)
			assert.Equal(t, tt.want, records[0].Severity)
		})
	}
}

func TestEvaluate_ExportSpikeCountsUnknownAccounts(t *testing.T) {
	events := []models.AccessEvent{
		access("ghost", models.ActionExport, "customer_records", 450, asOf.Add(-time.Minute)),
	}

	records, err := Evaluate(accounts(), nil, events, RuleConfig{}, asOf)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AnomalyExportSpike, records[0].Kind)
	assert.Equal(t, "ghost", records[0].Account())
}

func TestEvaluate_UnknownAccountsSkippedForAccountRules(t *testing.T) {
	cfg := RuleConfig{RestrictedResourcesByRole: map[models.Role][]string{models.RoleOperator: {"financial_reports"}}}
	logins := failedLogins("ghost", 10, asOf.Add(-time.Minute))
	events := []models.AccessEvent{
		access("ghost", models.ActionRead, "financial_reports", 500, asOf.Add(-time.Minute)),
	}

	records, err := Evaluate(accounts(), logins, events, cfg, asOf)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEvaluate_MalformedEventsIgnored(t *testing.T) {
	negative := access("C", models.ActionExport, "customer_records", -500, asOf.Add(-time.Minute))
	events := []models.AccessEvent{
		access("C", models.AccessAction("purge"), "customer_records", 900, asOf.Add(-time.Minute)),
		negative,
		{AccountID: "C", Action: models.ActionExport, ResourceName: "customer_records", SizeEstimateMB: models.Float64Ptr(900)},
		{AccountID: "C", Action: models.ActionExport, ResourceName: "customer_records", Timestamp: asOf.Add(-time.Minute)},
	}

	records, err := Evaluate(accounts(), nil, events, RuleConfig{}, asOf)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEvaluate_FutureEventsExcluded(t *testing.T) {
	events := []models.AccessEvent{
		access("C", models.ActionExport, "customer_records", 900, asOf.Add(time.Minute)),
	}

	records, err := Evaluate(accounts(), nil, events, RuleConfig{}, asOf)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEvaluate_ZeroAsOfUsesLatestTimestamp(t *testing.T) {
	latest := asOf.Add(-time.Hour)
	logins := failedLogins("A", 6, latest.Add(-5*time.Minute))
	events := []models.AccessEvent{access("C", models.ActionExport, "customer_records", 300, latest)}

	records, err := Evaluate(accounts(), logins, events, RuleConfig{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, ofKind(records, models.AnomalyLoginBruteForce), 1)
	assert.Len(t, ofKind(records, models.AnomalyExportSpike), 1)
}

func TestEvaluate_Ordering(t *testing.T) {
	cfg := RuleConfig{RestrictedResourcesByRole: map[models.Role][]string{models.RoleOperator: {"customer_records"}}}
	at := asOf.Add(-time.Minute)
	logins := failedLogins("A", 7, asOf.Add(-3*time.Minute))
	events := []models.AccessEvent{
		access("B", models.ActionRead, "customer_records", 1, at),
		access("C", models.ActionExport, "shipment_manifests", 900, at),
		access("A", models.ActionExport, "shipment_manifests", 250, asOf.Add(-30*time.Second)),
	}

	records, err := Evaluate(accounts(), logins, events, cfg, asOf)
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, asOf.Add(-30*time.Second), records[0].DetectedAt)
	assert.Equal(t, models.AnomalyExportSpike, records[1].Kind)
	assert.Equal(t, models.SeverityCritical, records[1].Severity)
	assert.Equal(t, models.AnomalyRBACViolation, records[2].Kind)
	assert.Equal(t, models.AnomalyLoginBruteForce, records[3].Kind)

	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if prev.DetectedAt.Equal(cur.DetectedAt) {
			assert.GreaterOrEqual(t, prev.Severity.Rank(), cur.Severity.Rank())
		} else {
			assert.True(t, prev.DetectedAt.After(cur.DetectedAt))
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	logins := failedLogins("A", 8, asOf.Add(-3*time.Minute))
	events := []models.AccessEvent{
		access("A", models.ActionRead, "customer_records", 120, asOf.Add(-2*time.Minute)),
		access("C", models.ActionExport, "customer_records", 450, asOf.Add(-time.Minute)),
	}

	first, err := Evaluate(accounts(), logins, events, RuleConfig{}, asOf)
	require.NoError(t, err)
	second, err := Evaluate(accounts(), logins, events, RuleConfig{}, asOf)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	accts := accounts()
	logins := failedLogins("A", 6, asOf.Add(-3*time.Minute))
	events := []models.AccessEvent{
		access("C", models.ActionExport, "customer_records", 450, asOf.Add(-time.Minute)),
		access("A", models.ActionRead, "customer_records", 150, asOf.Add(-2*time.Minute)),
	}

	acctsCopy := append([]models.AccountProfile(nil), accts...)
	loginsCopy := append([]models.LoginAttempt(nil), logins...)
	eventsCopy := append([]models.AccessEvent(nil), events...)

	_, err := Evaluate(accts, logins, events, RuleConfig{}, asOf)
	require.NoError(t, err)

	assert.Equal(t, acctsCopy, accts)
	assert.Equal(t, loginsCopy, logins)
	assert.Equal(t, eventsCopy, events)
	assert.Equal(t, 150.0, *events[1].SizeEstimateMB)
}

func TestNewEngine_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name string
		cfg  RuleConfig
	}{
		{name: "negative failure threshold", cfg: RuleConfig{BruteForceFailureThreshold: -1}},
		{name: "negative burst", cfg: RuleConfig{SensitiveBurstMB: -10}},
		{name: "negative export", cfg: RuleConfig{ExportSpikeMB: -1}},
		{name: "unknown role", cfg: RuleConfig{RestrictedResourcesByRole: map[models.Role][]string{"intern": {"x"}}}},
		{name: "blank restricted resource", cfg: RuleConfig{RestrictedResourcesByRole: map[models.Role][]string{models.RoleOperator: {" "}}}},
		{name: "blank sensitive resource", cfg: RuleConfig{SensitiveResources: []string{"customer_records", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)

			records, err := Evaluate(accounts(), failedLogins("A", 9, asOf), nil, tt.cfg, asOf)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.Nil(t, records)
		})
	}
}

func TestNewEngine_Defaults(t *testing.T) {
	engine, err := NewEngine(RuleConfig{})
	require.NoError(t, err)

	cfg := engine.Config()
	assert.Equal(t, DefaultBruteForceFailureThreshold, cfg.BruteForceFailureThreshold)
	assert.Equal(t, DefaultSensitiveBurstMB, cfg.SensitiveBurstMB)
	assert.Equal(t, DefaultExportSpikeMB, cfg.ExportSpikeMB)
	assert.Equal(t, DefaultBruteForceWindow, cfg.BruteForceWindow)
	assert.Equal(t, DefaultAccessWindow, cfg.AccessWindow)
	assert.ElementsMatch(t, DefaultSensitiveResources, cfg.SensitiveResources)
}
