package statetransition

import "errors"

// Protocol failure tags. The error text is the tag recorded as the
// ψ_B reason prefix when a report is routed to the bad-reports set.
var (
	ErrBadSignature             = errors.New("bad_signature")
	ErrAnchorNotRecent          = errors.New("anchor_not_recent")
	ErrBadServiceID             = errors.New("bad_service_id")
	ErrBadCodeHash              = errors.New("bad_code_hash")
	ErrWrongAssignment          = errors.New("wrong_assignment")
	ErrNotAuthorized            = errors.New("not_authorized")
	ErrCoreEngaged              = errors.New("core_engaged")
	ErrFutureReportSlot         = errors.New("future_report_slot")
	ErrReportBeforeLastRotation = errors.New("report_before_last_rotation")
	ErrTooManyDependencies      = errors.New("too_many_dependencies")
	ErrDependencyMissing        = errors.New("dependency_missing")
	ErrTooHighWorkReportGas     = errors.New("too_high_work_report_gas")
	ErrServiceItemGasTooLow     = errors.New("service_item_gas_too_low")
	ErrDuplicatePackage         = errors.New("duplicate_package_in_recent_history")
	ErrTimedOut                 = errors.New("timed_out")
	ErrAccumulationFailed       = errors.New("accumulation_failed")
)

// Identities recorded in ψ_B disputedBy sets for system-originated
// routings.
const (
	SystemValidation   = "system_validation"
	SystemTimeout      = "system_timeout"
	SystemAccumulation = "system_accumulation"
)
