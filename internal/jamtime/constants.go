package jamtime

const (
	// MinEpoch represents the first epoch.
	MinEpoch Epoch = 0

	// MaxEpoch represents the last possible epoch. It is calculated as
	// the maximum value of Epoch (uint32) divided by TimeslotsPerEpoch,
	// which is the epoch of the maximum Timeslot. That epoch is partial:
	// its LastTimeslot exceeds the Timeslot range and wraps.
	MaxEpoch Epoch = ^Epoch(0) / TimeslotsPerEpoch

	// TimeslotsPerEpoch defines the number of timeslots in each epoch.
	// Guarantor-roster rotation is keyed on this value. It currently
	// coincides with the report-timeout window, but the two are distinct
	// parameters and must stay in separate constants.
	TimeslotsPerEpoch = 100

	SlotPeriodInSeconds = 6 // P = 6: The slot period, in seconds
)
