// Package embed implements the widget session protocol: an anonymous,
// rate-limited chat session against a single agent, authorized by an opaque
// embed token in the URL path.
//
// The package is rendering-agnostic. Iframe hosts, script widgets and
// terminal adapters all drive the same Session and subscribe to its events.
package embed

import "time"

// State is the lifecycle state of a widget session.
type State int

// Session states. The only legal transitions are
// Init -> LoadingConfig -> Ready <-> Sending, LoadingConfig -> Error,
// and any state -> Closed.
const (
	StateInit State = iota
	StateLoadingConfig
	StateReady
	StateSending
	StateError
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoadingConfig:
		return "loading_config"
	case StateReady:
		return "ready"
	case StateSending:
		return "sending"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Role identifies the author of a message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Feedback values for assistant messages.
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Message is one entry in the session transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	// IsError marks a recovered per-turn failure rendered in place of an
	// answer. The session stays usable after it.
	IsError bool `json:"is_error,omitempty"`

	// Feedback is the last feedback recorded for this message.
	// Later feedback overwrites earlier feedback.
	Feedback string `json:"feedback,omitempty"`
}

// AgentInfo is the public identity of the agent behind a token.
type AgentInfo struct {
	AgentName   string `json:"agent_name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
}

// AgentMeta describes the agent inside the widget config.
type AgentMeta struct {
	Name        string `json:"name"`
	Domain      string `json:"domain"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Features flags the widget capabilities enabled for this agent.
type Features struct {
	Streaming           bool `json:"streaming"`
	FileUpload          bool `json:"file_upload"`
	VoiceInput          bool `json:"voice_input"`
	Feedback            bool `json:"feedback"`
	ConversationHistory bool `json:"conversation_history"`
}

// RateLimit reports the server-enforced query window. Display only;
// clients never pre-block sends on it.
type RateLimit struct {
	Limit         int `json:"limit"`
	Remaining     int `json:"remaining"`
	WindowSeconds int `json:"window_seconds"`
}

// UIHints carries rendering hints for the widget chrome.
type UIHints struct {
	Placeholder        string   `json:"placeholder"`
	WelcomeMessage     string   `json:"welcome_message"`
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`
}

// WidgetConfig is the full configuration fetched at session open.
type WidgetConfig struct {
	Agent     AgentMeta `json:"agent"`
	Features  Features  `json:"features"`
	RateLimit RateLimit `json:"rate_limit"`
	UIHints   UIHints   `json:"ui_hints"`
}

// QueryResult is the outcome of one query turn. MessageID identifies the
// answer for later feedback.
type QueryResult struct {
	Answer         string
	MessageID      string
	ResponseTimeMs int64
	TokensUsed     int
	RequestID      string
}

// Analytics event names emitted by the session.
const (
	EventWidgetOpen  = "widget_open"
	EventWidgetClose = "widget_close"
	EventMessageSent = "message_sent"
)
