package domain

import (
	"regexp"
	"time"
)

// Default annual entitlements when no rule row exists yet.
const (
	DefaultTechnicianDays = 72
	DefaultStandardDays   = 45
)

var technicianGrade = regexp.MustCompile(`(?i)technicien(ne)?|assistant(e)?`)

// EntitlementRule sets the annual entitlement per grade family. The most
// recently updated rule governs; older rows are kept as history.
type EntitlementRule struct {
	ID             string
	TechnicianDays int
	StandardDays   int
	UpdatedBy      string
	UpdatedAt      time.Time
}

// DefaultEntitlementRule returns the built-in grade entitlements.
func DefaultEntitlementRule() *EntitlementRule {
	return &EntitlementRule{
		TechnicianDays: DefaultTechnicianDays,
		StandardDays:   DefaultStandardDays,
	}
}

// DaysForGrade maps a free-form grade label to its annual entitlement.
// Technician and assistant grades get the technician figure.
func (r *EntitlementRule) DaysForGrade(grade string) int {
	if grade != "" && technicianGrade.MatchString(grade) {
		return r.TechnicianDays
	}

	return r.StandardDays
}
