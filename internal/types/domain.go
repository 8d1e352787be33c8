package types

import "time"

// LicenseCode is a single-use promotional token that upgrades a tenant's plan.
// Codes are created by the mint tool, claimed at most once by redemption, and
// never deleted -- claimed rows remain as the audit trail.
//
// Invariant: UsedBy and UsedAt are both nil or both set.
type LicenseCode struct {
	Code         string     `json:"code" db:"code"`
	Plan         PlanTier   `json:"plan" db:"plan"`
	DurationDays int        `json:"duration_days" db:"duration_days"`
	UsedBy       *string    `json:"used_by,omitempty" db:"used_by"`
	UsedAt       *time.Time `json:"used_at,omitempty" db:"used_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	// ExpiresAt is the deadline for claiming the code. It is independent of
	// DurationDays, which governs the plan window granted after a claim.
	ExpiresAt *time.Time `json:"expires_at,omitempty" db:"expires_at"`
}

// IsClaimed reports whether the code has already been redeemed.
func (c *LicenseCode) IsClaimed() bool {
	return c.UsedBy != nil
}

// Tenant represents a registered business using the platform. It owns
// employees, documents, and exactly one plan subscription state.
//
// The stored Plan field records what was purchased; access-control decisions
// go through the derived effective plan (see entitlements.Derive), which
// downgrades to free once PlanExpiresAt has passed.
type Tenant struct {
	ID            string     `json:"id" db:"id"`
	Name          string     `json:"name" db:"name"`
	Email         string     `json:"email" db:"email"`
	Plan          PlanTier   `json:"plan" db:"plan"`
	PlanStartedAt *time.Time `json:"plan_started_at,omitempty" db:"plan_started_at"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty" db:"plan_expires_at"`

	// MaxEmployees is materialized from the entitlement catalog at claim time.
	MaxEmployees int `json:"max_employees" db:"max_employees"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Employee is a read-only snapshot row consumed by the compliance rule
// engine. This subsystem never mutates employees.
type Employee struct {
	ID             string         `json:"id" db:"id"`
	TenantID       string         `json:"tenant_id" db:"tenant_id"`
	Name           string         `json:"name" db:"name"`
	Email          string         `json:"email,omitempty" db:"email"`
	Status         EmployeeStatus `json:"status" db:"status"`
	EmploymentType EmploymentType `json:"employment_type" db:"employment_type"`
	HireDate       time.Time      `json:"hire_date" db:"hire_date"`
}

// Document is a read-only snapshot of a rendered HR document. Only the
// metadata relevant to compliance rules is carried here; document bodies
// live with the (out-of-scope) rendering layer.
type Document struct {
	ID         string       `json:"id" db:"id"`
	TenantID   string       `json:"tenant_id" db:"tenant_id"`
	EmployeeID string       `json:"employee_id" db:"employee_id"`
	Kind       DocumentKind `json:"kind" db:"kind"`

	// ContractEndDate is set only on employment contracts with a fixed term.
	ContractEndDate *time.Time `json:"contract_end_date,omitempty" db:"contract_end_date"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NotificationItem is one compliance alert produced by a rule evaluator.
// Items are derived on every read and never persisted; two evaluations over
// the same inputs on the same calendar day produce identical items.
type NotificationItem struct {
	Type       AlertType    `json:"type"`
	EmployeeID string       `json:"employee_id"`
	Title      string       `json:"title"`
	Message    string       `json:"message"`
	TargetDate time.Time    `json:"target_date"`
	DaysLeft   int          `json:"days_left"`
	Urgency    UrgencyLevel `json:"urgency"`
	ActionURL  string       `json:"action_url"`
}

// PlanLimits defines the resource limits and capabilities of one plan tier.
// MaxEmployees == 0 means unlimited; enforcement code must treat 0 as no cap.
type PlanLimits struct {
	MaxEmployees      int            `json:"max_employees"`
	Features          []Feature      `json:"features"`
	FreeDocumentKinds []DocumentKind `json:"free_document_kinds"`
}

// HasFeature reports whether the limits include the named feature.
func (l PlanLimits) HasFeature(f Feature) bool {
	for _, have := range l.Features {
		if have == f {
			return true
		}
	}
	return false
}

// AllowsDocumentKind reports whether the free-tier document whitelist
// includes the given kind. Only meaningful when the effective plan is free;
// paid plans allow every kind.
func (l PlanLimits) AllowsDocumentKind(kind DocumentKind) bool {
	for _, have := range l.FreeDocumentKinds {
		if have == kind {
			return true
		}
	}
	return false
}

// RedemptionResult is returned to the caller after a successful claim so the
// UI can confirm what was applied.
type RedemptionResult struct {
	Plan         PlanTier `json:"plan"`
	DurationDays int      `json:"duration_days"`
}
