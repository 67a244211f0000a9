package commands

// Error messages
const (
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrRecordStoreUnavailable   = "record store unavailable"
	ErrInvalidLimit             = "--limit must be >= 1"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgNoRecords                = "No records yet."
	MsgNoMatches                = "No matching records."
)
