// Package entitlements provides plan catalog lookup and effective-plan gating.
package entitlements

import "hrdocs/internal/types"

// Catalog defines the authoritative limits for each plan tier.
// This is the single source of truth for what each plan allows.
type Catalog interface {
	// LimitsFor returns the resource limits for the given plan tier.
	// For unknown tiers, returns the most restrictive (Free) limits
	// to fail safely.
	LimitsFor(tier types.PlanTier) types.PlanLimits
}

// staticCatalog is a compile-time catalog backed by an in-memory map.
// It implements Catalog and is the standard implementation for production use.
type staticCatalog struct {
	limits map[types.PlanTier]types.PlanLimits
}

// planDefaults defines the hardcoded plan limits:
//
//	| Plan     | Employees      | Document kinds | Capabilities                         |
//	|----------|----------------|----------------|--------------------------------------|
//	| Free     | 5              | contract, cert | (none)                               |
//	| Starter  | 50             | all            | all_documents                        |
//	| Business | 200            | all            | + esignature, archive, notifications |
//	| Pro      | 0 (unlimited)  | all            | + multi_branch, expert_consult       |
//
// Pro uses 0 to represent "unlimited" -- enforcement code must treat 0 as no limit.
var planDefaults = map[types.PlanTier]types.PlanLimits{
	types.PlanFree: {
		MaxEmployees: 5,
		Features:     []types.Feature{},
		FreeDocumentKinds: []types.DocumentKind{
			types.DocEmploymentContract,
			types.DocCertificateOfEmployment,
		},
	},
	types.PlanStarter: {
		MaxEmployees: 50,
		Features: []types.Feature{
			types.FeatureAllDocuments,
		},
	},
	types.PlanBusiness: {
		MaxEmployees: 200,
		Features: []types.Feature{
			types.FeatureAllDocuments,
			types.FeatureESignature,
			types.FeatureArchive,
			types.FeatureNotifications,
		},
	},
	types.PlanPro: {
		MaxEmployees: 0, // Unlimited -- enforcement treats 0 as no limit
		Features: []types.Feature{
			types.FeatureAllDocuments,
			types.FeatureESignature,
			types.FeatureArchive,
			types.FeatureNotifications,
			types.FeatureMultiBranch,
			types.FeatureExpertConsult,
		},
	},
}

// freeLimits is cached to avoid map lookups on the fallback path.
var freeLimits = planDefaults[types.PlanFree]

// NewStaticCatalog returns a Catalog backed by the hardcoded plan limits.
// This is the standard production implementation; no database or external
// service is required.
func NewStaticCatalog() Catalog {
	// Copy the defaults into a new map so callers cannot mutate the package-level variable.
	m := make(map[types.PlanTier]types.PlanLimits, len(planDefaults))
	for k, v := range planDefaults {
		m[k] = v
	}
	return &staticCatalog{limits: m}
}

// LimitsFor returns the resource limits for the given plan tier.
// If the tier is unknown, it returns the Free tier limits as a safe default.
func (c *staticCatalog) LimitsFor(tier types.PlanTier) types.PlanLimits {
	if limits, ok := c.limits[tier]; ok {
		return limits
	}
	return freeLimits
}
