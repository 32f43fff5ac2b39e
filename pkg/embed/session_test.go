package embed

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport scripts the embed API per endpoint and records calls.
type fakeTransport struct {
	mu    sync.Mutex
	calls []string

	configResp *WidgetConfig
	configErr  error
	infoResp   *AgentInfo
	infoErr    error

	queryFn func(body map[string]string) (map[string]interface{}, error)

	// blockQuery, when non-nil, is closed by the test to release an
	// in-flight query
	blockQuery chan struct{}
}

func (f *fakeTransport) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeTransport) recorded(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

func (f *fakeTransport) Get(_ context.Context, path string, out interface{}) error {
	f.record("GET " + path)
	if strings.HasSuffix(path, "/config") {
		if f.configErr != nil {
			return f.configErr
		}
		resp := out.(*struct {
			Success bool `json:"success"`
			Data    struct {
				Config *WidgetConfig `json:"config"`
			} `json:"data"`
			Config *WidgetConfig `json:"config"`
		})
		resp.Data.Config = f.configResp
		return nil
	}
	if strings.HasSuffix(path, "/info") {
		if f.infoErr != nil {
			return f.infoErr
		}
		resp := out.(*struct {
			Success bool `json:"success"`
			AgentInfo
		})
		if f.infoResp != nil {
			resp.AgentInfo = *f.infoResp
		}
		return nil
	}
	return nil
}

func (f *fakeTransport) Post(_ context.Context, path string, body, out interface{}) error {
	f.record("POST " + path)
	if strings.HasSuffix(path, "/query") {
		if f.blockQuery != nil {
			<-f.blockQuery
		}
		req := map[string]string{}
		if m, ok := body.(map[string]string); ok {
			req = m
		}
		data, err := f.queryFn(req)
		if err != nil {
			return err
		}
		resp := out.(*struct {
			Success bool `json:"success"`
			Data    struct {
				Answer    string `json:"answer"`
				MessageID string `json:"message_id"`
			} `json:"data"`
			Metadata struct {
				ResponseTimeMs int64 `json:"response_time_ms"`
				TokensUsed     int   `json:"tokens_used"`
			} `json:"metadata"`
			RequestID string `json:"request_id"`
		})
		if answer, ok := data["answer"].(string); ok {
			resp.Data.Answer = answer
		}
		if mid, ok := data["message_id"].(string); ok {
			resp.Data.MessageID = mid
		}
		if rid, ok := data["request_id"].(string); ok {
			resp.RequestID = rid
		}
		return nil
	}
	return nil
}

func (f *fakeTransport) Delete(_ context.Context, path string) error {
	f.record("DELETE " + path)
	return nil
}

func testConfig() *WidgetConfig {
	return &WidgetConfig{
		Agent:     AgentMeta{Name: "support-bot", Domain: "retail"},
		Features:  Features{Feedback: true, ConversationHistory: true},
		RateLimit: RateLimit{Limit: 20, Remaining: 20, WindowSeconds: 60},
		UIHints: UIHints{
			Placeholder:    "Ask about retail...",
			WelcomeMessage: "Hi! I'm support-bot. How can I help you today?",
		},
	}
}

func newTestSession(transport *fakeTransport, events Events) *Session {
	client := NewClientWithTransport(transport, "a1b2c3d4e5f60718293a4b5c")
	return NewSession(client, events)
}

func TestSessionOpenSeedsWelcome(t *testing.T) {
	ft := &fakeTransport{configResp: testConfig()}

	var states []State
	var mu sync.Mutex
	s := newTestSession(ft, Events{
		OnState: func(st State) {
			mu.Lock()
			states = append(states, st)
			mu.Unlock()
		},
	})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))

	assert.Equal(t, StateReady, s.State())
	mu.Lock()
	assert.Equal(t, []State{StateLoadingConfig, StateReady}, states)
	mu.Unlock()

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Hi! I'm support-bot. How can I help you today?", msgs[0].Content)
	assert.False(t, msgs[0].IsError)
}

func TestSessionOpenFetchesInfoAndConfig(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		infoResp:   &AgentInfo{AgentName: "support-bot", Domain: "retail", Description: "Order lookups"},
	}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))

	info := s.Info()
	require.NotNil(t, info)
	assert.Equal(t, "support-bot", info.AgentName)
	assert.Equal(t, "retail", info.Domain)

	// both lookups go out, once each
	assert.Equal(t, 1, ft.recorded("GET /v1/embed/a1b2c3d4e5f60718293a4b5c/info"))
	assert.Equal(t, 1, ft.recorded("GET /v1/embed/a1b2c3d4e5f60718293a4b5c/config"))
}

func TestSessionOpenInfoFailureIsFatal(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		infoErr:    &APIError{StatusCode: http.StatusNotFound, Message: "Invalid embed token"},
	}
	s := newTestSession(ft, Events{})
	defer s.Close()

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsInvalidToken(err))
	assert.Equal(t, StateError, s.State())
	assert.Nil(t, s.Config())
}

func TestSessionOpenConfigFailureIsFatal(t *testing.T) {
	ft := &fakeTransport{configErr: &APIError{StatusCode: http.StatusNotFound, Message: "Invalid embed token"}}

	var fatal error
	s := newTestSession(ft, Events{OnError: func(err error) { fatal = err }})
	defer s.Close()

	err := s.Open(context.Background())
	require.Error(t, err)
	assert.True(t, IsInvalidToken(err))
	assert.Equal(t, StateError, s.State())
	assert.Equal(t, err, fatal)

	// error state is terminal for sends
	assert.ErrorIs(t, s.Send(context.Background(), "hello"), ErrNotReady)
}

func TestSessionOpenTwice(t *testing.T) {
	ft := &fakeTransport{configResp: testConfig()}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))
	assert.ErrorIs(t, s.Open(context.Background()), ErrAlreadyOpen)
}

func TestSessionSendAppendsOptimisticallyThenAnswer(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		queryFn: func(body map[string]string) (map[string]interface{}, error) {
			assert.Equal(t, "What is your refund policy?", body["query"])
			assert.NotEmpty(t, body["conversation_id"])
			return map[string]interface{}{"answer": "30 days.", "message_id": "msg_01H"}, nil
		},
	}

	var sawUserBeforeAnswer bool
	s := newTestSession(ft, Events{
		OnMessages: func(msgs []Message) {
			// during the sending phase the transcript ends with the user turn
			if len(msgs) == 2 && msgs[1].Role == RoleUser {
				sawUserBeforeAnswer = true
			}
		},
	})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Send(context.Background(), "What is your refund policy?"))

	assert.True(t, sawUserBeforeAnswer, "user message must appear before the answer arrives")
	assert.Equal(t, StateReady, s.State())

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, "What is your refund policy?", msgs[1].Content)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Equal(t, "30 days.", msgs[2].Content)
	assert.Equal(t, "msg_01H", msgs[2].ID)
}

func TestSessionSendRecoversFromTurnError(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "Answer engine unavailable"}
		},
	}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))
	err := s.Send(context.Background(), "hello")
	require.Error(t, err)

	// the failure is a transcript entry, not a session death
	assert.Equal(t, StateReady, s.State())
	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.True(t, msgs[2].IsError)
	assert.Equal(t, "Answer engine unavailable", msgs[2].Content)

	// next turn works
	ft.queryFn = func(map[string]string) (map[string]interface{}, error) {
		return map[string]interface{}{"answer": "recovered"}, nil
	}
	require.NoError(t, s.Send(context.Background(), "again"))
	msgs = s.Messages()
	assert.Equal(t, "recovered", msgs[len(msgs)-1].Content)
}

func TestSessionTurnHooks(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return map[string]interface{}{"answer": "30 days.", "message_id": "msg_01H"}, nil
		},
	}

	var mu sync.Mutex
	var sent, received []Message
	var turnErrs []error
	s := newTestSession(ft, Events{
		OnMessageSent: func(m Message) {
			mu.Lock()
			sent = append(sent, m)
			mu.Unlock()
		},
		OnMessageReceived: func(m Message) {
			mu.Lock()
			received = append(received, m)
			mu.Unlock()
		},
		OnError: func(err error) {
			mu.Lock()
			turnErrs = append(turnErrs, err)
			mu.Unlock()
		},
	})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))

	// the welcome seed is not a received message
	mu.Lock()
	assert.Empty(t, received)
	mu.Unlock()

	require.NoError(t, s.Send(context.Background(), "What is your refund policy?"))
	mu.Lock()
	require.Len(t, sent, 1)
	assert.Equal(t, RoleUser, sent[0].Role)
	assert.Equal(t, "What is your refund policy?", sent[0].Content)
	require.Len(t, received, 1)
	assert.Equal(t, "30 days.", received[0].Content)
	assert.Equal(t, "msg_01H", received[0].ID)
	assert.Empty(t, turnErrs)
	mu.Unlock()

	// a recovered turn reports through OnError, not OnMessageReceived
	ft.queryFn = func(map[string]string) (map[string]interface{}, error) {
		return nil, &APIError{StatusCode: http.StatusBadGateway, Message: "Answer engine unavailable"}
	}
	require.Error(t, s.Send(context.Background(), "again"))
	mu.Lock()
	assert.Len(t, sent, 2)
	assert.Len(t, received, 1)
	require.Len(t, turnErrs, 1)
	assert.Equal(t, "Answer engine unavailable", turnErrs[0].Error())
	mu.Unlock()
}

func TestSessionSingleInFlight(t *testing.T) {
	release := make(chan struct{})
	ft := &fakeTransport{
		configResp: testConfig(),
		blockQuery: release,
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return map[string]interface{}{"answer": "slow answer"}, nil
		},
	}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), "first") }()

	// wait until the first send is in flight
	require.Eventually(t, func() bool {
		return s.State() == StateSending
	}, time.Second, 5*time.Millisecond)

	// a second send is rejected, not queued
	assert.ErrorIs(t, s.Send(context.Background(), "second"), ErrNotReady)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateReady, s.State())
}

func TestSessionSendValidation(t *testing.T) {
	ft := &fakeTransport{configResp: testConfig()}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))

	assert.ErrorIs(t, s.Send(context.Background(), ""), ErrEmptyQuery)
	assert.ErrorIs(t, s.Send(context.Background(), "   \n\t"), ErrEmptyQuery)
	assert.Len(t, s.Messages(), 1, "rejected sends must not touch the transcript")
}

func TestSessionFeedbackLastWriteWins(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return map[string]interface{}{"answer": "answer", "message_id": "msg_fb"}, nil
		},
	}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Send(context.Background(), "q"))

	s.SendFeedback("msg_fb", FeedbackPositive)
	msgs := s.Messages()
	assert.Equal(t, FeedbackPositive, msgs[2].Feedback)

	// overwrite
	s.SendFeedback("msg_fb", FeedbackNegative)
	msgs = s.Messages()
	assert.Equal(t, FeedbackNegative, msgs[2].Feedback)

	// invalid type is ignored
	s.SendFeedback("msg_fb", "meh")
	msgs = s.Messages()
	assert.Equal(t, FeedbackNegative, msgs[2].Feedback)

	// unknown message id is ignored
	s.SendFeedback("msg_nope", FeedbackPositive)
}

func TestSessionCloseOrphansInFlightSend(t *testing.T) {
	release := make(chan struct{})
	ft := &fakeTransport{
		configResp: testConfig(),
		blockQuery: release,
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return map[string]interface{}{"answer": "late answer"}, nil
		},
	}
	s := newTestSession(ft, Events{})

	require.NoError(t, s.Open(context.Background()))

	done := make(chan error, 1)
	go func() { done <- s.Send(context.Background(), "q") }()

	require.Eventually(t, func() bool {
		return s.State() == StateSending
	}, time.Second, 5*time.Millisecond)

	s.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Equal(t, StateClosed, s.State())

	// the late answer never landed
	for _, m := range s.Messages() {
		assert.NotEqual(t, "late answer", m.Content)
	}

	// idempotent
	s.Close()
	assert.ErrorIs(t, s.Send(context.Background(), "q"), ErrClosed)
}

func TestSessionClearChatReseedsWelcome(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return map[string]interface{}{"answer": "a"}, nil
		},
	}
	s := newTestSession(ft, Events{})
	defer s.Close()

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Send(context.Background(), "q"))
	require.Len(t, s.Messages(), 3)

	before := s.ConversationID()
	s.ClearChat()

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "Hi! I'm support-bot. How can I help you today?", msgs[0].Content)
	assert.NotEqual(t, before, s.ConversationID(), "a cleared chat starts a new conversation")
	assert.Equal(t, StateReady, s.State())
}

func TestSessionBeaconsEmitted(t *testing.T) {
	ft := &fakeTransport{
		configResp: testConfig(),
		queryFn: func(map[string]string) (map[string]interface{}, error) {
			return map[string]interface{}{"answer": "a"}, nil
		},
	}
	s := newTestSession(ft, Events{})

	require.NoError(t, s.Open(context.Background()))
	require.NoError(t, s.Send(context.Background(), "q"))
	s.Close()

	// side-channel sends are async; allow them to drain
	require.Eventually(t, func() bool {
		return ft.recorded("POST /v1/embed/a1b2c3d4e5f60718293a4b5c/analytics") >= 3
	}, 2*time.Second, 10*time.Millisecond, "widget_open, message_sent and widget_close beacons expected")
}
