package types

// PlanTier identifies the subscription plan for a tenant.
type PlanTier string

const (
	PlanFree     PlanTier = "free"
	PlanStarter  PlanTier = "starter"
	PlanBusiness PlanTier = "business"
	PlanPro      PlanTier = "pro"
)

// PaidPlans lists the tiers a license code may grant. Free is never encoded
// on a license code; it is the absence of a paid window.
var PaidPlans = []PlanTier{PlanStarter, PlanBusiness, PlanPro}

// IsPaid reports whether the tier is a purchasable plan.
func (p PlanTier) IsPaid() bool {
	switch p {
	case PlanStarter, PlanBusiness, PlanPro:
		return true
	}
	return false
}

// PlanStatus is the derived lifecycle state of a tenant's plan window.
type PlanStatus string

const (
	PlanStatusFree         PlanStatus = "free"
	PlanStatusActive       PlanStatus = "active"
	PlanStatusExpiringSoon PlanStatus = "expiring_soon"
	PlanStatusExpired      PlanStatus = "expired"
)

// Feature identifies a gated platform capability.
type Feature string

const (
	FeatureAllDocuments  Feature = "all_documents"
	FeatureESignature    Feature = "esignature"
	FeatureArchive       Feature = "archive"
	FeatureNotifications Feature = "notifications"
	FeatureMultiBranch   Feature = "multi_branch"
	FeatureExpertConsult Feature = "expert_consult"
)

// EmployeeStatus represents the employment lifecycle state of an employee.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeResigned EmployeeStatus = "resigned"
	EmployeePending  EmployeeStatus = "pending"
)

// EmploymentType classifies the contract form of an employee.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "fulltime"
	EmploymentPartTime   EmploymentType = "parttime"
	EmploymentFreelancer EmploymentType = "freelancer"
)

// DocumentKind identifies the kind of HR document.
type DocumentKind string

const (
	DocEmploymentContract      DocumentKind = "employment_contract"
	DocNDA                     DocumentKind = "nda"
	DocCertificateOfEmployment DocumentKind = "certificate_of_employment"
	DocLeaveRequest            DocumentKind = "leave_request"
	DocPayslip                 DocumentKind = "payslip"
)

// AllDocumentKinds enumerates every document kind the platform renders.
var AllDocumentKinds = []DocumentKind{
	DocEmploymentContract,
	DocNDA,
	DocCertificateOfEmployment,
	DocLeaveRequest,
	DocPayslip,
}

// AlertType identifies which compliance rule produced a notification item.
type AlertType string

const (
	AlertContractExpiry  AlertType = "contract_expiry"
	AlertProbationEnd    AlertType = "probation_end"
	AlertLeavePromotion  AlertType = "leave_promotion"
	AlertDocumentRenewal AlertType = "document_renewal"
)

// UrgencyLevel determines how prominently an alert is surfaced.
type UrgencyLevel string

const (
	UrgencyCritical UrgencyLevel = "critical"
	UrgencyWarning  UrgencyLevel = "warning"
	UrgencyInfo     UrgencyLevel = "info"
)

// Telemetry metric names for CloudWatch. All components use these constants.
const (
	MetricAPILatency        = "APILatency"
	MetricAPIRequestCount   = "APIRequestCount"
	MetricRedemptionAttempt = "RedemptionAttempt"
	MetricAlertBatchSize    = "AlertBatchSize"
	MetricEmailDelivery     = "EmailDelivery"

	DimEndpoint = "Endpoint"
	DimMethod   = "Method"
	DimStatus   = "Status"
	DimResult   = "Result"

	MetricNamespace = "HRDocs"
)
