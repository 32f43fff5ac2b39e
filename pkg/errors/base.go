package errors

import "net/http"

// ============================================================================
// Success
// ============================================================================

// OK represents a successful operation.
var OK = Register(&Errno{
	Code: 0,
	HTTP: http.StatusOK,
	Msg:  "Success",
})

// ============================================================================
// Request Errors (Category: 01)
// ============================================================================

var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP: http.StatusBadRequest,
		Msg:  "Bad request",
	})

	// ErrInvalidParam indicates an invalid parameter.
	ErrInvalidParam = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 1),
		HTTP: http.StatusBadRequest,
		Msg:  "Invalid parameter",
	})

	// ErrMissingParam indicates a missing required parameter.
	ErrMissingParam = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 2),
		HTTP: http.StatusBadRequest,
		Msg:  "Missing required parameter",
	})

	// ErrValidationFailed indicates validation failure.
	ErrValidationFailed = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRequest, 3),
		HTTP: http.StatusBadRequest,
		Msg:  "Validation failed",
	})
)

// ============================================================================
// Authentication Errors (Category: 02)
// ============================================================================

var (
	// ErrUnauthorized indicates the request is not authenticated.
	ErrUnauthorized = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryAuth, 0),
		HTTP: http.StatusUnauthorized,
		Msg:  "Unauthorized",
	})

	// ErrInvalidToken indicates the bearer token is invalid.
	ErrInvalidToken = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryAuth, 1),
		HTTP: http.StatusUnauthorized,
		Msg:  "Invalid token",
	})

	// ErrTokenExpired indicates the bearer token has expired.
	ErrTokenExpired = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryAuth, 2),
		HTTP: http.StatusUnauthorized,
		Msg:  "Token expired",
	})

	// ErrInvalidCredentials indicates invalid login credentials.
	ErrInvalidCredentials = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryAuth, 3),
		HTTP: http.StatusUnauthorized,
		Msg:  "Invalid email or password",
	})
)

// ============================================================================
// Authorization Errors (Category: 03)
// ============================================================================

var (
	// ErrForbidden indicates the request is forbidden.
	ErrForbidden = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryPermission, 0),
		HTTP: http.StatusForbidden,
		Msg:  "Forbidden",
	})

	// ErrAdminRequired indicates the route needs an admin account.
	ErrAdminRequired = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryPermission, 1),
		HTTP: http.StatusForbidden,
		Msg:  "Admin access required",
	})
)

// ============================================================================
// Resource Errors (Category: 04)
// ============================================================================

var (
	// ErrNotFound indicates the resource is not found.
	ErrNotFound = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryResource, 0),
		HTTP: http.StatusNotFound,
		Msg:  "Resource not found",
	})

	// ErrUserNotFound indicates the user is not found.
	ErrUserNotFound = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryResource, 1),
		HTTP: http.StatusNotFound,
		Msg:  "User not found",
	})

	// ErrRouteNotFound indicates the route is not found.
	ErrRouteNotFound = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryResource, 2),
		HTTP: http.StatusNotFound,
		Msg:  "Route not found",
	})
)

// ============================================================================
// Conflict Errors (Category: 05)
// ============================================================================

var (
	// ErrAlreadyExists indicates the resource already exists.
	ErrAlreadyExists = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryConflict, 0),
		HTTP: http.StatusConflict,
		Msg:  "Resource already exists",
	})
)

// ============================================================================
// Rate Limit Errors (Category: 06)
// ============================================================================

var (
	// ErrTooManyRequests indicates too many requests.
	ErrTooManyRequests = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryRateLimit, 0),
		HTTP: http.StatusTooManyRequests,
		Msg:  "Too many requests",
	})
)

// ============================================================================
// Internal Errors (Category: 07)
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Internal server error",
	})

	// ErrPanic indicates a service panic.
	ErrPanic = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryInternal, 1),
		HTTP: http.StatusInternalServerError,
		Msg:  "Service panic",
	})
)

// ============================================================================
// Database Errors (Category: 08)
// ============================================================================

var (
	// ErrDatabase indicates a database error.
	ErrDatabase = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryDatabase, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Database error",
	})
)

// ============================================================================
// Cache Errors (Category: 09)
// ============================================================================

var (
	// ErrCache indicates a cache error.
	ErrCache = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryCache, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Cache error",
	})
)

// ============================================================================
// Network Errors (Category: 10)
// ============================================================================

var (
	// ErrNetwork indicates a network error.
	ErrNetwork = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryNetwork, 0),
		HTTP: http.StatusBadGateway,
		Msg:  "Network error",
	})

	// ErrServiceUnavailable indicates the service is unavailable.
	ErrServiceUnavailable = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryNetwork, 1),
		HTTP: http.StatusServiceUnavailable,
		Msg:  "Service unavailable",
	})
)

// ============================================================================
// Timeout Errors (Category: 11)
// ============================================================================

var (
	// ErrTimeout indicates operation timeout.
	ErrTimeout = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryTimeout, 0),
		HTTP: http.StatusGatewayTimeout,
		Msg:  "Operation timeout",
	})
)

// ============================================================================
// Configuration Errors (Category: 12)
// ============================================================================

var (
	// ErrConfig indicates a configuration error.
	ErrConfig = Register(&Errno{
		Code: MakeCode(ServiceCommon, CategoryConfig, 0),
		HTTP: http.StatusInternalServerError,
		Msg:  "Configuration error",
	})
)
