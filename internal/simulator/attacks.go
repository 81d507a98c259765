package simulator

import (
	"time"

	"github.com/klipseyuw/INFO-492-Demo-sub000/pkg/models"
)

// UnknownAccountID is the actor of the injected export that belongs to no
// monitored account.
const UnknownAccountID = "svc-unregistered"

// InjectAttacks returns one instance of each detectable attack, timed in
// the few minutes before asOf:
//   - seven failed logins against the first analyst
//   - a 135 MB burst of sensitive reads by the first admin
//   - an operator reading financial_reports
//   - a 450 MB manifest export, plus a 260 MB export by an unknown actor
func InjectAttacks(accounts []models.AccountProfile, asOf time.Time) ([]models.LoginAttempt, []models.AccessEvent) {
	admin := firstWithRole(accounts, models.RoleAdmin)
	analyst := firstWithRole(accounts, models.RoleAnalyst)
	operator := firstWithRole(accounts, models.RoleOperator)

	var logins []models.LoginAttempt
	var accesses []models.AccessEvent

	if analyst != nil {
		start := asOf.Add(-3 * time.Minute)
		for i := 0; i < 7; i++ {
			logins = append(logins, models.LoginAttempt{
				AccountID: analyst.ID,
				Succeeded: false,
				IPAddress: "203.0.113.77",
				Timestamp: start.Add(time.Duration(i*10) * time.Second),
			})
		}
	}

	if admin != nil {
		for i, size := range []float64{45, 45, 45} {
			accesses = append(accesses, models.AccessEvent{
				AccountID:      admin.ID,
				Action:         models.ActionRead,
				ResourceName:   "customer_records",
				SizeEstimateMB: models.Float64Ptr(size),
				Timestamp:      asOf.Add(-time.Duration(4-i) * time.Minute),
			})
		}
		accesses = append(accesses, models.AccessEvent{
			AccountID:      admin.ID,
			Action:         models.ActionExport,
			ResourceName:   "shipment_manifests",
			SizeEstimateMB: models.Float64Ptr(450),
			Timestamp:      asOf.Add(-time.Minute),
		})
	}

	if operator != nil {
		accesses = append(accesses, models.AccessEvent{
			AccountID:      operator.ID,
			Action:         models.ActionRead,
			ResourceName:   "financial_reports",
			SizeEstimateMB: models.Float64Ptr(2),
			Timestamp:      asOf.Add(-2 * time.Minute),
		})
	}

	accesses = append(accesses, models.AccessEvent{
		AccountID:      UnknownAccountID,
		Action:         models.ActionExport,
		ResourceName:   "customer_records",
		SizeEstimateMB: models.Float64Ptr(260),
		Timestamp:      asOf.Add(-90 * time.Second),
	})

	return logins, accesses
}

func firstWithRole(accounts []models.AccountProfile, role models.Role) *models.AccountProfile {
	for i := range accounts {
		if accounts[i].Role == role {
			return &accounts[i]
		}
	}
	return nil
}
