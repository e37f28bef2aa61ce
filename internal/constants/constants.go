package constants

const (
	APIName   = "HMS"
	CLIName   = "hmsctl"
	EnvPrefix = "HMS"

	DefaultConfigPath1 = "/etc/hms"
	DefaultConfigPath2 = "$HOME/.hms"
)

const (
	HospitalIDHeader = "X-Hospital-Id"
	HospitalIDClaim  = "hospital_id"
	RoleClaim        = "role"
)

const (
	DefaultTop  = 20
	DefaultSkip = 0
	MaxTop      = 100
)

// Mode is the deployment mode of a binary.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeProduction  Mode = "production"
)

// LogLevel represents available logging levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String implements the Stringer interface
func (l LogLevel) String() string {
	return string(l)
}
