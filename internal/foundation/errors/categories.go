package errors

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"
	CategoryAuth       ErrorCategory = "auth"
	CategoryNotFound   ErrorCategory = "not_found"

	// CategoryNetwork represents content repository integration errors.
	CategoryNetwork ErrorCategory = "network"
	CategoryContent ErrorCategory = "content"

	// CategoryResolver represents failures mapping a document to a route.
	CategoryResolver ErrorCategory = "resolver"

	// CategoryBuild represents build pipeline and output errors.
	CategoryBuild      ErrorCategory = "build"
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategoryRuntime represents runtime and infrastructure errors.
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution completely
	SeverityError   ErrorSeverity = "error"   // Fails the current operation
	SeverityWarning ErrorSeverity = "warning" // Continues with degraded functionality
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// RetryStrategy tells the caller whether a failed generation is worth
// running again. Nothing in this module retries on its own.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"      // Permanent failure
	RetryBackoff    RetryStrategy = "backoff"    // Transient transport failure
	RetryRateLimit  RetryStrategy = "rate_limit" // Repository throttled the request
	RetryUserAction RetryStrategy = "user"       // Credentials or permissions must change
)

// Hint returns a short user-facing suggestion for the strategy, or "" when
// there is nothing to suggest.
func (s RetryStrategy) Hint() string {
	switch s {
	case RetryBackoff:
		return "the content repository may be temporarily unreachable; run again later"
	case RetryRateLimit:
		return "the content repository rate limit was reached; wait before running again"
	case RetryUserAction:
		return "check the access token and repository permissions"
	default:
		return ""
	}
}

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}
