package entitlements

import (
	"testing"

	"hrdocs/internal/types"
)

func TestNewStaticCatalog(t *testing.T) {
	cat := NewStaticCatalog()
	if cat == nil {
		t.Fatal("NewStaticCatalog returned nil")
	}
}

func TestLimitsFor_FreeTier(t *testing.T) {
	cat := NewStaticCatalog()
	limits := cat.LimitsFor(types.PlanFree)

	if limits.MaxEmployees != 5 {
		t.Errorf("Free: MaxEmployees = %d, want 5", limits.MaxEmployees)
	}
	if len(limits.Features) != 0 {
		t.Errorf("Free: Features = %v, want none", limits.Features)
	}
	assertDocumentKinds(t, "Free", limits, []types.DocumentKind{
		types.DocEmploymentContract,
		types.DocCertificateOfEmployment,
	})
}

func TestLimitsFor_StarterTier(t *testing.T) {
	cat := NewStaticCatalog()
	limits := cat.LimitsFor(types.PlanStarter)

	if limits.MaxEmployees != 50 {
		t.Errorf("Starter: MaxEmployees = %d, want 50", limits.MaxEmployees)
	}
	assertFeatures(t, "Starter", limits,
		[]types.Feature{types.FeatureAllDocuments},
		[]types.Feature{types.FeatureESignature, types.FeatureNotifications, types.FeatureMultiBranch})
}

func TestLimitsFor_BusinessTier(t *testing.T) {
	cat := NewStaticCatalog()
	limits := cat.LimitsFor(types.PlanBusiness)

	if limits.MaxEmployees != 200 {
		t.Errorf("Business: MaxEmployees = %d, want 200", limits.MaxEmployees)
	}
	assertFeatures(t, "Business", limits,
		[]types.Feature{
			types.FeatureAllDocuments,
			types.FeatureESignature,
			types.FeatureArchive,
			types.FeatureNotifications,
		},
		[]types.Feature{types.FeatureMultiBranch, types.FeatureExpertConsult})
}

func TestLimitsFor_ProTier(t *testing.T) {
	cat := NewStaticCatalog()
	limits := cat.LimitsFor(types.PlanPro)

	if limits.MaxEmployees != 0 {
		t.Errorf("Pro: MaxEmployees = %d, want 0 (unlimited)", limits.MaxEmployees)
	}
	assertFeatures(t, "Pro", limits,
		[]types.Feature{
			types.FeatureAllDocuments,
			types.FeatureESignature,
			types.FeatureArchive,
			types.FeatureNotifications,
			types.FeatureMultiBranch,
			types.FeatureExpertConsult,
		},
		nil)
}

func TestLimitsFor_UnknownTierFallsBackToFree(t *testing.T) {
	cat := NewStaticCatalog()

	for _, tier := range []types.PlanTier{"nonexistent", ""} {
		limits := cat.LimitsFor(tier)
		if limits.MaxEmployees != 5 {
			t.Errorf("tier %q: MaxEmployees = %d, want Free fallback 5", tier, limits.MaxEmployees)
		}
		if len(limits.Features) != 0 {
			t.Errorf("tier %q: Features = %v, want Free fallback (none)", tier, limits.Features)
		}
	}
}

func TestLimitsFor_AllTiersPresent(t *testing.T) {
	// Verify every defined PlanTier constant has an entry in the catalog.
	cat := NewStaticCatalog()

	tiers := []types.PlanTier{
		types.PlanFree,
		types.PlanStarter,
		types.PlanBusiness,
		types.PlanPro,
	}

	for _, tier := range tiers {
		limits := cat.LimitsFor(tier)
		t.Logf("Tier=%s  Employees=%d  Features=%d", tier, limits.MaxEmployees, len(limits.Features))
	}
}

func TestCatalogInterface(t *testing.T) {
	// Compile-time check that staticCatalog satisfies Catalog.
	var _ Catalog = NewStaticCatalog()
}

// assertFeatures checks that limits contain every feature in want and none in reject.
func assertFeatures(t *testing.T, tier string, limits types.PlanLimits, want, reject []types.Feature) {
	t.Helper()

	for _, f := range want {
		if !limits.HasFeature(f) {
			t.Errorf("%s: missing feature %q", tier, f)
		}
	}
	for _, f := range reject {
		if limits.HasFeature(f) {
			t.Errorf("%s: unexpected feature %q", tier, f)
		}
	}
}

// assertDocumentKinds checks the exact whitelist of document kinds.
func assertDocumentKinds(t *testing.T, tier string, limits types.PlanLimits, want []types.DocumentKind) {
	t.Helper()

	if len(limits.FreeDocumentKinds) != len(want) {
		t.Errorf("%s: FreeDocumentKinds = %v, want %v", tier, limits.FreeDocumentKinds, want)
		return
	}
	for _, k := range want {
		if !limits.AllowsDocumentKind(k) {
			t.Errorf("%s: document kind %q not whitelisted", tier, k)
		}
	}
}
