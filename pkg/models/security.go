package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAnalyst  Role = "analyst"
	RoleOperator Role = "operator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAnalyst, RoleOperator:
		return true
	default:
		return false
	}
}

type AccessAction string

const (
	ActionRead   AccessAction = "read"
	ActionWrite  AccessAction = "write"
	ActionExport AccessAction = "export"
	ActionDelete AccessAction = "delete"
)

func (a AccessAction) Valid() bool {
	switch a {
	case ActionRead, ActionWrite, ActionExport, ActionDelete:
		return true
	default:
		return false
	}
}

// AccountProfile is a monitored principal.
type AccountProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// LoginAttempt is one authentication attempt against an account.
type LoginAttempt struct {
	AccountID string    `json:"account_id"`
	Succeeded bool      `json:"succeeded"`
	IPAddress string    `json:"ip_address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// AccessEvent is one action an account performed on a named resource.
type AccessEvent struct {
	AccountID      string       `json:"account_id"`
	Action         AccessAction `json:"action"`
	ResourceName   string       `json:"resource_name"`
	SizeEstimateMB *float64     `json:"size_estimate_mb,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

// SizeMB returns the size estimate, treating a missing value as zero.
func (e AccessEvent) SizeMB() float64 {
	if e.SizeEstimateMB == nil {
		return 0
	}
	return *e.SizeEstimateMB
}

// SecuritySnapshot is the bounded slice of security data one evaluation
// pass runs against.
type SecuritySnapshot struct {
	Accounts []AccountProfile `json:"accounts"`
	Logins   []LoginAttempt   `json:"logins"`
	Accesses []AccessEvent    `json:"accesses"`
}
