package models

import (
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/internal/stats"
)

type AnomalyKind string

const (
	AnomalyLoginBruteForce    AnomalyKind = "LOGIN_BRUTE_FORCE"
	AnomalySensitiveReadBurst AnomalyKind = "SENSITIVE_READ_BURST"
	AnomalyRBACViolation      AnomalyKind = "RBAC_VIOLATION"
	AnomalyExportSpike        AnomalyKind = "EXPORT_SPIKE"
)

func (k AnomalyKind) Valid() bool {
	switch k {
	case AnomalyLoginBruteForce, AnomalySensitiveReadBurst, AnomalyRBACViolation, AnomalyExportSpike:
		return true
	default:
		return false
	}
}

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities: critical > high > medium > low.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// AnomalyRecord is one classified deviation produced by an evaluation pass.
// AccountID is nil for detections that are not tied to an account.
type AnomalyRecord struct {
	AccountID   *string     `json:"account_id"`
	Kind        AnomalyKind `json:"kind"`
	Severity    Severity    `json:"severity"`
	Description string      `json:"description"`
	DetectedAt  time.Time   `json:"detected_at"`
}

// Account returns the account ID or an empty string.
func (a *AnomalyRecord) Account() string {
	if a.AccountID == nil {
		return ""
	}
	return *a.AccountID
}

// Bucket is the minute the detection falls into. Deduplication, announcement
// suppression and the stored unique key all use it.
func (a *AnomalyRecord) Bucket() time.Time {
	return stats.MinuteBucket(a.DetectedAt)
}
