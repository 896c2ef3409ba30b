package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/selection"
	"github.com/sandevgo/policyadvisor/internal/service/session"
)

var errUnreachable = errors.New("connection refused")

type mockBackend struct {
	createFunc  func(ctx context.Context) (core.Session, error)
	getFunc     func(ctx context.Context, id string) (core.Session, []core.StoredRecord, error)
	sendFunc    func(ctx context.Context, sessionID, content string) (core.ChatResponse, error)
	chatFunc    func(ctx context.Context, transcript []core.TranscriptEntry, policyIDs []string) (core.ChatResponse, error)
	compareFunc func(ctx context.Context, policyIDs []string) (core.Comparison, error)
	deleteFunc  func(ctx context.Context, id string) error
}

func (m *mockBackend) CreateSession(ctx context.Context) (core.Session, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx)
	}
	return core.Session{ID: "sess-1"}, nil
}

func (m *mockBackend) ListSessions(ctx context.Context) ([]core.SessionSummary, error) {
	return nil, nil
}

func (m *mockBackend) GetSession(ctx context.Context, id string) (core.Session, []core.StoredRecord, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return core.Session{ID: id}, nil, nil
}

func (m *mockBackend) SendMessage(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, sessionID, content)
	}
	return core.ChatResponse{Type: "question", Message: "tell me more"}, nil
}

func (m *mockBackend) DiscoverChat(ctx context.Context, transcript []core.TranscriptEntry, policyIDs []string) (core.ChatResponse, error) {
	if m.chatFunc != nil {
		return m.chatFunc(ctx, transcript, policyIDs)
	}
	return core.ChatResponse{Type: "question", Message: "tell me more"}, nil
}

func (m *mockBackend) ComparePolicies(ctx context.Context, policyIDs []string) (core.Comparison, error) {
	if m.compareFunc != nil {
		return m.compareFunc(ctx, policyIDs)
	}
	return core.Comparison{}, nil
}

func (m *mockBackend) DeleteSession(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type memorySlot struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memorySlot) Get(ctx context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name], nil
}

func (m *memorySlot) Set(ctx context.Context, name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[name] = value
	return nil
}

func (m *memorySlot) Clear(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, name)
	return nil
}

type fixture struct {
	backend   *mockBackend
	store     *conversation.Store
	selection *selection.Set
	manager   *session.Manager
	router    *Router
}

func newFixture(t *testing.T, backend *mockBackend) *fixture {
	t.Helper()

	store := conversation.NewStore()
	sel := selection.NewSet()
	slot := &memorySlot{values: make(map[string]string)}
	manager := session.NewManager(backend, slot, store, sel, session.NewDirectory(backend))
	manager.Initialize(context.Background())

	return &fixture{
		backend:   backend,
		store:     store,
		selection: sel,
		manager:   manager,
		router:    NewRouter(backend, manager, store, sel, 30),
	}
}

func TestSend_PersistentPathUsesActiveSession(t *testing.T) {
	var gotSession, gotContent string
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
			gotSession, gotContent = sessionID, content
			return core.ChatResponse{
				Type:     "results",
				Message:  "Here are your matches",
				Policies: []core.Policy{{ID: "p1", Name: "CarePlus", Insurer: "Acme"}},
			}, nil
		},
	}
	f := newFixture(t, backend)

	msg, err := f.router.Send(context.Background(), "family floater under 20k")
	require.NoError(t, err)

	assert.Equal(t, "sess-1", gotSession)
	assert.Equal(t, "family floater under 20k", gotContent)
	assert.Equal(t, core.KindResults, msg.Kind)
	require.NotNil(t, msg.Results)
	assert.Equal(t, "p1", msg.Results.Policies[0].ID)

	// greeting + user turn + assistant turn
	msgs := f.store.Snapshot()
	require.Len(t, msgs, 3)
	assert.Equal(t, core.RoleUser, msgs[1].Role)
	assert.Equal(t, core.RoleAssistant, msgs[2].Role)
}

func TestSend_StatelessPathReplaysFullTranscript(t *testing.T) {
	var gotTranscript []core.TranscriptEntry
	var gotIDs []string
	backend := &mockBackend{
		createFunc: func(ctx context.Context) (core.Session, error) {
			return core.Session{}, errUnreachable
		},
		chatFunc: func(ctx context.Context, transcript []core.TranscriptEntry, policyIDs []string) (core.ChatResponse, error) {
			gotTranscript = transcript
			gotIDs = policyIDs
			return core.ChatResponse{
				Type:              "results",
				Message:           "Here you go",
				Policies:          []core.Policy{{ID: "p1", Name: "CarePlus", Insurer: "Acme"}},
				UploadedPolicyIDs: []string{"u1", "u2"},
			}, nil
		},
	}
	f := newFixture(t, backend)

	state, _ := f.manager.Active()
	require.Equal(t, session.StateStateless, state)

	_, err := f.router.Send(context.Background(), "need opd cover, 2 people, 15k budget")
	require.NoError(t, err)

	// Greeting plus the fresh user turn, in order.
	require.Len(t, gotTranscript, 2)
	assert.Equal(t, core.RoleAssistant, gotTranscript[0].Role)
	assert.Equal(t, core.RoleUser, gotTranscript[1].Role)
	assert.Equal(t, "need opd cover, 2 people, 15k budget", gotTranscript[1].Content)
	assert.Empty(t, gotIDs)

	// Surfaced ids feed the next stateless send.
	_, err = f.router.Send(context.Background(), "what does restoration mean?")
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, gotIDs)
}

func TestSend_PersistentModeDoesNotAccumulateIDs(t *testing.T) {
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
			return core.ChatResponse{
				Type:              "results",
				Message:           "matches",
				UploadedPolicyIDs: []string{"u1"},
			}, nil
		},
	}
	f := newFixture(t, backend)

	_, err := f.router.Send(context.Background(), "anything")
	require.NoError(t, err)
	assert.Empty(t, f.router.PolicyIDs())
}

func TestSend_FailureAppendsApologyAndKeepsContext(t *testing.T) {
	fail := false
	backend := &mockBackend{
		createFunc: func(ctx context.Context) (core.Session, error) {
			return core.Session{}, errUnreachable
		},
		chatFunc: func(ctx context.Context, transcript []core.TranscriptEntry, policyIDs []string) (core.ChatResponse, error) {
			if fail {
				return core.ChatResponse{}, errUnreachable
			}
			return core.ChatResponse{
				Type:              "results",
				Message:           "matches",
				UploadedPolicyIDs: []string{"u1"},
			}, nil
		},
	}
	f := newFixture(t, backend)

	_, err := f.router.Send(context.Background(), "need maternity cover")
	require.NoError(t, err)
	require.Equal(t, []string{"u1"}, f.router.PolicyIDs())

	fail = true
	msg, err := f.router.Send(context.Background(), "and opd?")
	require.NoError(t, err)

	assert.Equal(t, core.KindQuestion, msg.Kind)
	assert.Equal(t, apologyText, msg.Content)

	// Failed turn stays visible, accumulated context untouched.
	msgs := f.store.Snapshot()
	assert.Equal(t, "and opd?", msgs[len(msgs)-2].Content)
	assert.Equal(t, apologyText, msgs[len(msgs)-1].Content)
	assert.Equal(t, []string{"u1"}, f.router.PolicyIDs())
}

func TestSend_NewResultsClearSelection(t *testing.T) {
	backend := &mockBackend{
		sendFunc: func(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
			return core.ChatResponse{
				Type:     "results",
				Message:  "fresh list",
				Policies: []core.Policy{{ID: "p9", Name: "NewPlan", Insurer: "Acme"}},
			}, nil
		},
	}
	f := newFixture(t, backend)

	f.selection.Toggle("p1", "CarePlus")
	f.selection.Toggle("p2", "SecureMax")

	_, err := f.router.Send(context.Background(), "show me cheaper plans")
	require.NoError(t, err)
	assert.Equal(t, 0, f.selection.Len())
}

func TestSend_QuestionKeepsSelection(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	f.selection.Toggle("p1", "CarePlus")

	_, err := f.router.Send(context.Background(), "hmm")
	require.NoError(t, err)
	assert.Equal(t, 1, f.selection.Len())
}

func TestSend_ResultDiscardedAfterSessionSwitch(t *testing.T) {
	f := newFixture(t, &mockBackend{})
	f.backend.sendFunc = func(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
		// User switches away while this send is in flight.
		require.NoError(t, f.manager.Switch(ctx, "other-session"))
		return core.ChatResponse{Type: "results", Message: "late answer"}, nil
	}

	_, err := f.router.Send(context.Background(), "slow question")
	assert.ErrorIs(t, err, ErrSessionSwitched)

	// The switched-to conversation must not contain the late answer.
	for _, m := range f.store.Snapshot() {
		assert.NotEqual(t, "late answer", m.Content)
	}
}

func TestSend_SecondSendRejectedWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newFixture(t, &mockBackend{})
	f.backend.sendFunc = func(ctx context.Context, sessionID, content string) (core.ChatResponse, error) {
		close(entered)
		<-release
		return core.ChatResponse{Type: "question", Message: "ok"}, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.router.Send(context.Background(), "first")
		assert.NoError(t, err)
	}()

	<-entered
	_, err := f.router.Send(context.Background(), "second")
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("first send never finished")
	}
}

func TestNormalize_VariantsByType(t *testing.T) {
	tests := []struct {
		name string
		resp core.ChatResponse
		want func(t *testing.T, msg core.Message)
	}{
		{
			name: "question",
			resp: core.ChatResponse{Type: "question", Message: "what budget?"},
			want: func(t *testing.T, msg core.Message) {
				assert.Equal(t, core.KindQuestion, msg.Kind)
				assert.Nil(t, msg.Results)
				assert.Nil(t, msg.Explanation)
			},
		},
		{
			name: "results",
			resp: core.ChatResponse{
				Type:                  "results",
				Message:               "here",
				Policies:              []core.Policy{{ID: "p1"}},
				ExtractedRequirements: &core.Requirements{Needs: []string{"opd"}},
				TotalFound:            7,
			},
			want: func(t *testing.T, msg core.Message) {
				require.NotNil(t, msg.Results)
				assert.Equal(t, 7, msg.Results.TotalFound)
				assert.Equal(t, []string{"opd"}, msg.Results.Extracted.Needs)
			},
		},
		{
			name: "no_results",
			resp: core.ChatResponse{Type: "no_results", Message: "nothing matched"},
			want: func(t *testing.T, msg core.Message) {
				assert.Equal(t, core.KindNoResults, msg.Kind)
				require.NotNil(t, msg.Results)
				assert.Empty(t, msg.Results.Policies)
			},
		},
		{
			name: "explanation",
			resp: core.ChatResponse{
				Type:       "explanation",
				Message:    "restoration refills cover",
				Found:      true,
				Citation:   "Section 4.2",
				PolicyName: "CarePlus",
			},
			want: func(t *testing.T, msg core.Message) {
				require.NotNil(t, msg.Explanation)
				assert.True(t, msg.Explanation.Found)
				assert.Equal(t, "Section 4.2", msg.Explanation.Citation)
			},
		},
		{
			name: "unknown type passes through",
			resp: core.ChatResponse{Type: "gap_analysis", Message: "future"},
			want: func(t *testing.T, msg core.Message) {
				assert.Equal(t, core.MessageKind("gap_analysis"), msg.Kind)
				assert.Nil(t, msg.Results)
				assert.Nil(t, msg.Explanation)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := Normalize(tt.resp)
			assert.Equal(t, core.RoleAssistant, msg.Role)
			assert.Equal(t, tt.resp.Message, msg.Content)
			tt.want(t, msg)
		})
	}
}
