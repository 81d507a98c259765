package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/stats"
)

func TestAnomalyRecord_Bucket(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	at := time.Date(2026, time.March, 3, 7, 30, 42, 500, tokyo)

	r := AnomalyRecord{Kind: AnomalyExportSpike, DetectedAt: at}

	assert.Equal(t, time.Date(2026, time.March, 2, 22, 30, 0, 0, time.UTC), r.Bucket())
	assert.Equal(t, stats.MinuteBucket(at), r.Bucket())
	assert.Equal(t, time.UTC, r.Bucket().Location())
}

func TestAnomalyRecord_Account(t *testing.T) {
	assert.Equal(t, "", (&AnomalyRecord{}).Account())
	assert.Equal(t, "A", (&AnomalyRecord{AccountID: StringPtr("A")}).Account())
}
