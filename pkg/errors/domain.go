package errors

import "net/http"

// Domain-specific error codes. Message strings on this surface are part of
// the wire contract and travel verbatim to clients.

// Auth service (01)
var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = Register(&Errno{
		Code: MakeCode(ServiceAuth, CategoryConflict, 0),
		HTTP: http.StatusConflict,
		Msg:  "Email already registered",
	})

	// ErrLoginRequired indicates a dashboard call without a valid session.
	ErrLoginRequired = Register(&Errno{
		Code: MakeCode(ServiceAuth, CategoryAuth, 0),
		HTTP: http.StatusUnauthorized,
		Msg:  "Authentication required. Please login again.",
	})
)

// Dashboard API (02)
var (
	// ErrAgentNotFound indicates the named agent does not exist.
	ErrAgentNotFound = Register(&Errno{
		Code: MakeCode(ServiceDashboard, CategoryResource, 0),
		HTTP: http.StatusNotFound,
		Msg:  "Agent not found",
	})

	// ErrAgentExists indicates an agent with the same name already exists.
	ErrAgentExists = Register(&Errno{
		Code: MakeCode(ServiceDashboard, CategoryConflict, 0),
		HTTP: http.StatusConflict,
		Msg:  "Agent already exists",
	})

	// ErrInvalidSourceType indicates an unsupported knowledge source type.
	ErrInvalidSourceType = Register(&Errno{
		Code: MakeCode(ServiceDashboard, CategoryRequest, 0),
		HTTP: http.StatusBadRequest,
		Msg:  "Invalid source type",
	})
)

// Embed API (03)
var (
	// ErrInvalidEmbedToken indicates the embed token is unknown or revoked.
	ErrInvalidEmbedToken = Register(&Errno{
		Code: MakeCode(ServiceEmbed, CategoryAuth, 0),
		HTTP: http.StatusNotFound,
		Msg:  "Invalid embed token",
	})

	// ErrEmptyQuery indicates the query text is empty or whitespace.
	ErrEmptyQuery = Register(&Errno{
		Code: MakeCode(ServiceEmbed, CategoryRequest, 0),
		HTTP: http.StatusBadRequest,
		Msg:  "Query cannot be empty",
	})

	// ErrInvalidFeedbackType indicates feedback type is not positive|negative.
	ErrInvalidFeedbackType = Register(&Errno{
		Code: MakeCode(ServiceEmbed, CategoryRequest, 1),
		HTTP: http.StatusBadRequest,
		Msg:  "Invalid feedback type",
	})

	// ErrEmbedRateLimited indicates the per-token window is exhausted.
	ErrEmbedRateLimited = Register(&Errno{
		Code: MakeCode(ServiceEmbed, CategoryRateLimit, 0),
		HTTP: http.StatusTooManyRequests,
		Msg:  "Rate limit exceeded. Please try again later.",
	})
)

// Answer engine (90)
var (
	// ErrEngineUnavailable indicates the answer engine cannot be reached.
	ErrEngineUnavailable = Register(&Errno{
		Code: MakeCode(ServiceEngine, CategoryNetwork, 0),
		HTTP: http.StatusBadGateway,
		Msg:  "Answer engine unavailable",
	})

	// ErrEngineTimeout indicates the answer engine did not respond in time.
	ErrEngineTimeout = Register(&Errno{
		Code: MakeCode(ServiceEngine, CategoryTimeout, 0),
		HTTP: http.StatusGatewayTimeout,
		Msg:  "Answer engine timeout",
	})

	// ErrEngineFailed indicates the answer engine returned an error.
	ErrEngineFailed = Register(&Errno{
		Code: MakeCode(ServiceEngine, CategoryInternal, 0),
		HTTP: http.StatusBadGateway,
		Msg:  "Answer engine request failed",
	})
)
