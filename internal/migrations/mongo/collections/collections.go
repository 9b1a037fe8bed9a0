package collections

const (
	Appointments = "Appointments"
	BlockedTimes = "Blocked_times"
	WorkingHours = "Working_hours"
	ScopeLocks   = "Scope_locks"
)
