package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/anomaly"
	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/predictor"
	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

var asOf = time.Date(2026, time.March, 2, 14, 30, 0, 0, time.UTC)

var ruleConfig = anomaly.RuleConfig{
	RestrictedResourcesByRole: map[models.Role][]string{
		models.RoleOperator: {"financial_reports"},
	},
}

func kinds(records []models.AnomalyRecord) map[models.AnomalyKind]int {
	out := make(map[models.AnomalyKind]int)
	for _, r := range records {
		out[r.Kind]++
	}
	return out
}

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{Seed: 7, InjectAttacks: true}

	a := New(cfg).Generate(asOf)
	b := New(cfg).Generate(asOf)

	assert.Equal(t, a.Shipments, b.Shipments)
	assert.Equal(t, a.Logins, b.Logins)
	assert.Equal(t, a.Accesses, b.Accesses)

	c := New(Config{Seed: 8, InjectAttacks: true}).Generate(asOf)
	assert.NotEqual(t, a.Accesses, c.Accesses)
}

func TestGenerate_Shape(t *testing.T) {
	ds := New(Config{Seed: 1, Shipments: 30, ActiveShipments: 5, Accounts: 6}).Generate(asOf)

	require.Len(t, ds.Shipments, 35)
	require.Len(t, ds.Accounts, 6)

	completed, active := 0, 0
	for _, s := range ds.Shipments {
		if s.IsActive() {
			active++
			assert.Equal(t, models.ShipmentInTransit, s.Status)
		} else {
			completed++
			assert.True(t, s.ActualTime.Before(asOf))
		}
	}
	assert.Equal(t, 30, completed)
	assert.Equal(t, 5, active)

	for _, l := range ds.Logins {
		assert.False(t, l.Timestamp.After(asOf))
		assert.False(t, l.Timestamp.Before(asOf.Add(-15*time.Minute)))
	}
}

func TestGenerate_BaselineIsQuiet(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		ds := New(Config{Seed: seed}).Generate(asOf)

		records, err := anomaly.Evaluate(ds.Accounts, ds.Logins, ds.Accesses, ruleConfig, asOf)
		require.NoError(t, err)
		assert.Empty(t, records, "seed %d", seed)
	}
}

func TestGenerate_InjectedAttacksAreDetected(t *testing.T) {
	ds := New(Config{Seed: 3, InjectAttacks: true}).Generate(asOf)

	records, err := anomaly.Evaluate(ds.Accounts, ds.Logins, ds.Accesses, ruleConfig, asOf)
	require.NoError(t, err)

	found := kinds(records)
	assert.Equal(t, 1, found[models.AnomalyLoginBruteForce])
	assert.Equal(t, 1, found[models.AnomalySensitiveReadBurst])
	assert.Equal(t, 1, found[models.AnomalyRBACViolation])
	assert.Equal(t, 2, found[models.AnomalyExportSpike])

	var unknownExport bool
	for _, r := range records {
		if r.Kind == models.AnomalyExportSpike && r.Account() == UnknownAccountID {
			unknownExport = true
			assert.Equal(t, models.SeverityHigh, r.Severity)
		}
		if r.Kind == models.AnomalyLoginBruteForce {
			assert.Equal(t, models.SeverityCritical, r.Severity)
		}
	}
	assert.True(t, unknownExport)
}

func TestGenerate_FeedsPredictor(t *testing.T) {
	ds := New(Config{Seed: 5, Shipments: 25, Pattern: "gradual_rise"}).Generate(asOf)

	var history []models.HistoricalDelaySample
	for i := len(ds.Shipments) - 1; i >= 0; i-- {
		if sample, ok := ds.Shipments[i].DelaySample(); ok {
			history = append(history, sample)
		}
	}
	require.Len(t, history, 25)

	result, err := predictor.Default().Predict(predictor.Input{History: history, AsOf: asOf})
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceHigh, result.Confidence)
	assert.Greater(t, result.LinearRegressionComponent, result.MovingAverageComponent-10)
	assert.Greater(t, result.RSquared, 0.5)
}

func TestParsePattern(t *testing.T) {
	assert.Equal(t, "steady", ParsePattern("").Name())
	assert.Equal(t, "gradual_rise", ParsePattern("gradual_rise").Name())
	assert.Equal(t, "weekly", ParsePattern("weekly").Name())
	assert.Equal(t, "random", ParsePattern("random").Name())
	assert.Equal(t, "sine_wave", ParsePattern("sine_wave").Name())
}

func TestTraffic_Advances(t *testing.T) {
	g := New(Config{Seed: 9})

	logins1, _ := g.Traffic(asOf.Add(-time.Minute), asOf)
	logins2, _ := g.Traffic(asOf.Add(-time.Minute), asOf)

	require.NotEmpty(t, logins1)
	assert.NotEqual(t, logins1, logins2)
}
