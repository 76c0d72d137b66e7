package common

const (
	// SuperMajorityNumerator and SuperMajorityDenominator define the
	// endorsement threshold ⌈N · 2/3⌉ over the combined guarantor roster.
	SuperMajorityNumerator   = 2
	SuperMajorityDenominator = 3

	// ReportTimeoutSlots is the number of slots a pending report may wait
	// for further endorsements before it is evicted to the bad-reports set.
	ReportTimeoutSlots = 100

	// MaxDependencies bounds the number of work-digest dependencies a
	// report may declare.
	MaxDependencies = 10

	// MaxWorkReportGas bounds the total gas a report may claim to have used.
	MaxWorkReportGas = 200_000

	// MinServiceItemGas is the minimum gas ceiling any single work-item
	// must carry to be admissible.
	MinServiceItemGas = 10

	// MaxCoreIndex is the highest addressable core.
	MaxCoreIndex = 1023

	// AnchorMaxAgeSlots bounds how far behind the current slot a report's
	// anchor block may be.
	AnchorMaxAgeSlots = 50

	// RecentHistoryLookupSlots is the recent-history lookup window. The
	// duplicate-package check does not read it: it consults all of ξ.
	RecentHistoryLookupSlots = 200
)

// SuperMajorityThreshold computes ⌈n · 2/3⌉ for a roster of size n.
func SuperMajorityThreshold(n int) int {
	return (n*SuperMajorityNumerator + SuperMajorityDenominator - 1) / SuperMajorityDenominator
}
