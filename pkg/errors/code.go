package errors

// ErrorCode represents a unique error identifier.
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & I/O errors
// 11000-11999: Package & simfile errors
// 12000-12999: Language & compilation errors
// 13000-13999: Sandbox & execution errors
// 14000-14999: Checker & verdict errors
// 15000-15999: Configuration & CLI errors

const (
	// ========== System & I/O Errors (10000-10999) ==========

	Success ErrorCode = 10000

	InternalError      ErrorCode = 10001
	InvalidParams      ErrorCode = 10002
	NotFound           ErrorCode = 10003
	Timeout            ErrorCode = 10004
	ResourceExhausted  ErrorCode = 10005
	IOError            ErrorCode = 10100
	FileNotFound       ErrorCode = 10101
	PermissionDenied   ErrorCode = 10102
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10301

	// ========== Package & Simfile Errors (11000-11999) ==========

	PackageNotFound      ErrorCode = 11000
	PackageLoadFailed    ErrorCode = 11001
	PackageArchiveBroken ErrorCode = 11002
	MainDirectoryMissing ErrorCode = 11003
	PackageInvalid       ErrorCode = 11004

	SimfileNotFound  ErrorCode = 11100
	SimfileParse     ErrorCode = 11101
	SimfileInvalid   ErrorCode = 11102
	ConversionFailed ErrorCode = 11103

	// ========== Language & Compilation Errors (12000-12999) ==========

	LanguageNotSupported ErrorCode = 12000
	CompileCacheError    ErrorCode = 12001
	CompilationError     ErrorCode = 12100
	CompileTimeout       ErrorCode = 12101

	// ========== Sandbox & Execution Errors (13000-13999) ==========

	SandboxSystemError  ErrorCode = 13000
	SandboxSetupFailed  ErrorCode = 13001
	RuntimeError        ErrorCode = 13100
	TimeLimitExceeded   ErrorCode = 13101
	MemoryLimitExceeded ErrorCode = 13102
	OutputLimitExceeded ErrorCode = 13103
	RunnerKilled        ErrorCode = 13104

	// ========== Checker & Verdict Errors (14000-14999) ==========

	CheckerNotFound  ErrorCode = 14000
	CheckerCrashed   ErrorCode = 14001
	CheckerBadOutput ErrorCode = 14002
	InteractorBroken ErrorCode = 14003

	// ========== Configuration & CLI Errors (15000-15999) ==========

	ConfigInvalid  ErrorCode = 15000
	ProfileMissing ErrorCode = 15001
	CLIUsageError  ErrorCode = 15100
)

// errorMessages maps error codes to their default English messages.
var errorMessages = map[ErrorCode]string{
	Success:           "success",
	InternalError:     "internal error",
	InvalidParams:     "invalid parameters",
	NotFound:          "resource not found",
	Timeout:           "operation timed out",
	ResourceExhausted: "resource exhausted",

	IOError:          "i/o error",
	FileNotFound:     "file not found",
	PermissionDenied: "permission denied",

	ValidationFailed:   "validation failed",
	RequiredFieldEmpty: "required field is empty",

	PackageNotFound:      "package not found",
	PackageLoadFailed:    "failed to load package",
	PackageArchiveBroken: "package archive is corrupt or unreadable",
	MainDirectoryMissing: "package has no unambiguous main directory",
	PackageInvalid:       "package failed validation",

	SimfileNotFound:  "simfile not found",
	SimfileParse:     "failed to parse simfile",
	SimfileInvalid:   "simfile failed normalization checks",
	ConversionFailed: "package conversion failed",

	LanguageNotSupported: "programming language not supported",
	CompileCacheError:    "compile cache operation failed",
	CompilationError:     "compilation error",
	CompileTimeout:       "compilation timed out",

	SandboxSystemError: "sandbox system error",
	SandboxSetupFailed: "failed to prepare sandbox",
	RuntimeError:       "runtime error",
	TimeLimitExceeded:  "time limit exceeded",
	MemoryLimitExceeded: "memory limit exceeded",
	OutputLimitExceeded: "output limit exceeded",
	RunnerKilled:        "process was killed",

	CheckerNotFound:  "checker binary not found",
	CheckerCrashed:   "checker process crashed",
	CheckerBadOutput: "checker produced malformed output",
	InteractorBroken: "interactor pipe broke unexpectedly",

	ConfigInvalid:  "configuration invalid",
	ProfileMissing: "language or task profile missing",
	CLIUsageError:  "invalid command usage",
}

// Message returns the default message for the error code.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "unknown error"
}

// ExitCode returns the process exit status judgectl should use for this code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c == Success:
		return 0
	case c >= 15000 && c < 16000:
		return 2
	case c >= 10300 && c < 10400:
		return 2
	default:
		return 1
	}
}
