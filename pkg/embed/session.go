package embed

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/agentic-hq/agentic/pkg/id"
)

// Events are the observer hooks a rendering adapter registers on a Session.
// All hooks are optional and are invoked outside the session lock, so they
// may call back into the session.
type Events struct {
	// OnState fires on every state transition.
	OnState func(State)
	// OnMessages fires with a transcript snapshot whenever it changes.
	OnMessages func([]Message)
	// OnConfig fires once when the widget config loads.
	OnConfig func(*WidgetConfig)
	// OnMessageSent fires when a user turn is appended to the transcript.
	OnMessageSent func(Message)
	// OnMessageReceived fires when an assistant answer lands. The welcome
	// seed and error bubbles do not count.
	OnMessageReceived func(Message)
	// OnError fires for session errors. Open failures are fatal; per-turn
	// failures are recovered and also surface as IsError messages.
	OnError func(error)
}

// Session is the widget session state machine. One Session is one widget
// lifetime: Open loads config and seeds the welcome message, Send runs chat
// turns one at a time, Close tears down.
//
// All methods are safe for concurrent use.
type Session struct {
	client *Client
	events Events

	mu       sync.Mutex
	state    State
	messages []Message
	config   *WidgetConfig
	info     *AgentInfo
	convID   string
	err      error

	// gen increments on Close and ClearChat so stale in-flight completions
	// become no-ops instead of mutating a newer transcript.
	gen int

	// pool runs side-channel sends (feedback, analytics) so they can never
	// block the chat path.
	pool    *ants.Pool
	ownPool bool
	sideCtx context.Context
	cancel  context.CancelFunc
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPool shares an existing worker pool for side-channel sends instead of
// creating one per session.
func WithPool(pool *ants.Pool) SessionOption {
	return func(s *Session) {
		s.pool = pool
		s.ownPool = false
	}
}

// NewSession creates a Session over the given client. The session starts in
// Init; call Open to load config and become Ready.
func NewSession(client *Client, events Events, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		client:  client,
		events:  events,
		state:   StateInit,
		convID:  id.NewConversationID(),
		ownPool: true,
		sideCtx: ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pool == nil {
		// small pool; a widget emits at most a handful of beacons per turn
		pool, err := ants.NewPool(4, ants.WithNonblocking(true))
		if err == nil {
			s.pool = pool
		}
	}
	return s
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Config returns the loaded widget config, or nil before Open completes.
func (s *Session) Config() *WidgetConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// Info returns the agent identity, or nil before Open completes.
func (s *Session) Info() *AgentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

// Err returns the fatal session error, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ConversationID returns the id grouping this session's turns.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.convID
}

// Open fetches the agent info and widget config in parallel and transitions
// the session to Ready once both land. On success the welcome message is
// seeded and a widget_open event is reported. A failure of either call is
// fatal: the session lands in Error and only Close remains useful.
func (s *Session) Open(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.state != StateInit {
		s.mu.Unlock()
		return ErrAlreadyOpen
	}
	s.state = StateLoadingConfig
	gen := s.gen
	s.mu.Unlock()
	s.emitState(StateLoadingConfig)

	var (
		cfg     *WidgetConfig
		info    *AgentInfo
		infoErr error
	)
	var wg sync.WaitGroup
	wg.Add(2)
	var err error
	go func() {
		defer wg.Done()
		cfg, err = s.client.Config(ctx)
	}()
	go func() {
		defer wg.Done()
		info, infoErr = s.client.Info(ctx)
	}()
	wg.Wait()
	if err == nil {
		err = infoErr
	}

	s.mu.Lock()
	if s.gen != gen || s.state == StateClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		s.state = StateError
		s.err = err
		s.mu.Unlock()
		s.emitState(StateError)
		if s.events.OnError != nil {
			s.events.OnError(err)
		}
		return err
	}

	s.config = cfg
	s.info = info
	s.state = StateReady
	if welcome := cfg.UIHints.WelcomeMessage; welcome != "" {
		s.messages = append(s.messages, Message{
			ID:        id.NewMessageID(),
			Role:      RoleAssistant,
			Content:   welcome,
			CreatedAt: time.Now(),
		})
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.emitState(StateReady)
	if s.events.OnConfig != nil {
		s.events.OnConfig(cfg)
	}
	if s.events.OnMessages != nil {
		s.events.OnMessages(snapshot)
	}
	s.Track(EventWidgetOpen, nil)
	return nil
}

// Send runs one chat turn: the user message is appended immediately, the
// query goes to the server, and the answer (or a recovered error bubble)
// is appended when it returns. Only one turn may be in flight; concurrent
// calls get ErrNotReady rather than queueing.
func (s *Session) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return ErrClosed
	case StateReady:
		// proceed
	default:
		s.mu.Unlock()
		return ErrNotReady
	}

	s.state = StateSending
	sent := Message{
		ID:        id.NewMessageID(),
		Role:      RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
	}
	s.messages = append(s.messages, sent)
	gen := s.gen
	convID := s.convID
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.emitState(StateSending)
	if s.events.OnMessages != nil {
		s.events.OnMessages(snapshot)
	}
	if s.events.OnMessageSent != nil {
		s.events.OnMessageSent(sent)
	}
	s.Track(EventMessageSent, map[string]interface{}{"length": len(text)})

	result, err := s.client.Query(ctx, text, convID)

	s.mu.Lock()
	if s.gen != gen || s.state == StateClosed {
		// torn down while in flight; drop the response
		s.mu.Unlock()
		return ErrClosed
	}

	reply := Message{
		ID:        id.NewMessageID(),
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
	}
	if err != nil {
		// recovered turn: render the failure in the transcript and stay usable
		reply.IsError = true
		reply.Content = turnErrorText(err)
	} else {
		reply.Content = result.Answer
		// feedback is keyed by the server-issued message id
		if result.MessageID != "" {
			reply.ID = result.MessageID
		}
	}
	s.messages = append(s.messages, reply)
	s.state = StateReady
	snapshot = s.snapshotLocked()
	s.mu.Unlock()

	s.emitState(StateReady)
	if s.events.OnMessages != nil {
		s.events.OnMessages(snapshot)
	}
	if err != nil {
		if s.events.OnError != nil {
			s.events.OnError(err)
		}
	} else if s.events.OnMessageReceived != nil {
		s.events.OnMessageReceived(reply)
	}
	return err
}

// turnErrorText renders a per-turn failure for the transcript. Server error
// strings pass through verbatim; transport failures get a generic line.
func turnErrorText(err error) string {
	if apiErr, ok := err.(*APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Sorry, something went wrong. Please try again."
}

// SendFeedback records feedback for a message, last write wins. The local
// transcript updates immediately; the server write is best effort on the
// side-channel pool.
func (s *Session) SendFeedback(messageID, feedbackType string) {
	if feedbackType != FeedbackPositive && feedbackType != FeedbackNegative {
		return
	}

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	found := false
	for i := range s.messages {
		if s.messages[i].ID == messageID && s.messages[i].Role == RoleAssistant {
			s.messages[i].Feedback = feedbackType
			found = true
			break
		}
	}
	var snapshot []Message
	if found {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if !found {
		return
	}
	if s.events.OnMessages != nil {
		s.events.OnMessages(snapshot)
	}

	s.submit(func(ctx context.Context) {
		if err := s.client.Feedback(ctx, messageID, feedbackType, ""); err != nil {
			logger.Warnf("feedback send failed: %v", err)
		}
	})
}

// Track reports an analytics event, fire and forget. Never blocks the
// caller and never affects the chat path.
func (s *Session) Track(event string, data map[string]interface{}) {
	s.submit(func(ctx context.Context) {
		if err := s.client.Analytics(ctx, event, data); err != nil {
			logger.Warnf("analytics send failed: event=%s err=%v", event, err)
		}
	})
}

// ClearChat resets the transcript and re-seeds the welcome message. The
// server is notified best effort. Any in-flight turn is orphaned.
func (s *Session) ClearChat() {
	s.mu.Lock()
	if s.state == StateClosed || s.config == nil {
		s.mu.Unlock()
		return
	}
	s.gen++
	oldConvID := s.convID
	s.convID = id.NewConversationID()
	s.messages = nil
	if welcome := s.config.UIHints.WelcomeMessage; welcome != "" {
		s.messages = append(s.messages, Message{
			ID:        id.NewMessageID(),
			Role:      RoleAssistant,
			Content:   welcome,
			CreatedAt: time.Now(),
		})
	}
	if s.state == StateSending {
		s.state = StateReady
	}
	snapshot := s.snapshotLocked()
	state := s.state
	s.mu.Unlock()

	s.emitState(state)
	if s.events.OnMessages != nil {
		s.events.OnMessages(snapshot)
	}

	s.submit(func(ctx context.Context) {
		if err := s.client.ClearConversation(ctx, oldConvID); err != nil {
			logger.Warnf("conversation clear failed: %v", err)
		}
	})
}

// Close tears the session down. Idempotent. In-flight sends become no-ops,
// a widget_close beacon is attempted, and the side-channel pool drains.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.gen++
	s.mu.Unlock()

	s.emitState(StateClosed)

	// direct send: the pool is about to shut down and the beacon should
	// still get its chance
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := s.client.Analytics(ctx, EventWidgetClose, nil); err != nil {
		logger.Warnf("analytics send failed: event=%s err=%v", EventWidgetClose, err)
	}
	cancel()

	s.cancel()
	if s.ownPool && s.pool != nil {
		s.pool.Release()
	}
}

// submit schedules a side-channel send. Drops with a warning when the pool
// is saturated or gone; beacons are expendable.
func (s *Session) submit(task func(context.Context)) {
	if s.pool == nil {
		return
	}
	err := s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(s.sideCtx, 5*time.Second)
		defer cancel()
		task(ctx)
	})
	if err != nil {
		logger.Warnf("side-channel send dropped: %v", err)
	}
}

// snapshotLocked copies the transcript. Caller must hold the lock.
func (s *Session) snapshotLocked() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Session) emitState(state State) {
	if s.events.OnState != nil {
		s.events.OnState(state)
	}
}
