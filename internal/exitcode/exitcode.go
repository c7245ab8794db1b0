package exitcode

const (
	Success       = 0
	UsageError    = 1
	InputError    = 2
	DBConnError   = 3
	RefDataError  = 4
	StoreError    = 5
	ClaimNotFound = 6
	// Blocked is returned when a run completes with an overall fail status.
	Blocked = 7
)
