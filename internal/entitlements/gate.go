package entitlements

import (
	"time"

	"hrdocs/internal/types"
)

// Gate is the derived entitlement state for a tenant at a point in time.
//
// StoredPlan is the tier the tenant purchased; EffectivePlan is the tier
// that governs access. The two diverge when the plan window has lapsed: an
// expired paid plan is enforced as free while the stored value stays intact,
// so a renewal restores access without re-deriving what was bought.
type Gate struct {
	StoredPlan    types.PlanTier
	EffectivePlan types.PlanTier
	Status        types.PlanStatus
	// DaysRemaining is nil for free tenants (no expiry to count down to).
	DaysRemaining  *int
	IsExpired      bool
	IsExpiringSoon bool

	limits types.PlanLimits
}

// expiringSoonThresholdDays is the remaining-days cutoff below which an
// active paid plan is flagged as expiring soon.
const expiringSoonThresholdDays = 7

// Gatekeeper derives Gates from stored tenant plan state. It is stateless
// apart from the catalog and safe for concurrent use.
type Gatekeeper struct {
	catalog Catalog
}

func NewGatekeeper(catalog Catalog) *Gatekeeper {
	return &Gatekeeper{catalog: catalog}
}

// Derive computes the effective entitlement state for a tenant from its
// stored plan and expiry. Pure with respect to its inputs: identical
// (plan, planExpiresAt, now) triples always yield the same Gate.
//
// A paid plan with no expiry on record is treated as expired rather than
// perpetual, so a missing timestamp can never grant paid access.
func (g *Gatekeeper) Derive(plan types.PlanTier, planExpiresAt *time.Time, now time.Time) Gate {
	gate := Gate{
		StoredPlan:    plan,
		EffectivePlan: plan,
		Status:        types.PlanStatusFree,
	}

	if plan.IsPaid() {
		days := 0
		if planExpiresAt != nil {
			days = ceilDays(planExpiresAt.Sub(now))
		}
		gate.DaysRemaining = &days
		gate.IsExpired = days <= 0
		gate.IsExpiringSoon = days > 0 && days <= expiringSoonThresholdDays

		switch {
		case gate.IsExpired:
			gate.Status = types.PlanStatusExpired
			gate.EffectivePlan = types.PlanFree
		case gate.IsExpiringSoon:
			gate.Status = types.PlanStatusExpiringSoon
		default:
			gate.Status = types.PlanStatusActive
		}
	} else {
		// Unknown tiers fall through the catalog to free limits below.
		gate.EffectivePlan = types.PlanFree
	}

	gate.limits = g.catalog.LimitsFor(gate.EffectivePlan)
	return gate
}

// ceilDays converts a duration to whole days, rounding up. A plan that
// expires in one hour still has 1 day remaining; one that expired an hour
// ago has 0.
func ceilDays(d time.Duration) int {
	days := d / (24 * time.Hour)
	if d%(24*time.Hour) > 0 {
		days++
	}
	return int(days)
}

// Limits returns the catalog limits of the effective plan.
func (g Gate) Limits() types.PlanLimits {
	return g.limits
}

// CanAccessDocument reports whether the tenant may work with the given
// document kind. Paid effective plans allow every kind; free falls back to
// the catalog whitelist.
func (g Gate) CanAccessDocument(kind types.DocumentKind) bool {
	if g.EffectivePlan.IsPaid() {
		return true
	}
	return g.limits.AllowsDocumentKind(kind)
}

// CanAddEmployee reports whether a tenant with currentCount employees may
// add one more. A zero cap means unlimited.
func (g Gate) CanAddEmployee(currentCount int) bool {
	if g.limits.MaxEmployees == 0 {
		return true
	}
	return currentCount < g.limits.MaxEmployees
}

// CanUseFeature reports whether the effective plan includes the feature.
func (g Gate) CanUseFeature(feature types.Feature) bool {
	return g.limits.HasFeature(feature)
}
