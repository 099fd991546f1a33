package domain

import "time"

// Employee is the identity the surrounding personnel system hands us:
// enough to key balances, pick an entitlement by grade, and anchor vesting
// on the assignment date. Personnel CRUD itself lives outside this service.
type Employee struct {
	ID          string
	BadgeNumber string
	FullName    string
	Grade       string
	Email       string
	AssignedAt  *time.Time
	CreatedAt   time.Time
}
