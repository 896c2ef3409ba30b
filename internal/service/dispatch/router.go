package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/selection"
	"github.com/sandevgo/policyadvisor/internal/service/session"
	"github.com/sandevgo/policyadvisor/pkg/log"
)

var (
	// ErrSendInFlight rejects a second send before the previous one resolved.
	ErrSendInFlight = errors.New("a send is already in flight")

	// ErrSessionSwitched marks a response that resolved after the user moved
	// to a different session; its result was discarded.
	ErrSessionSwitched = errors.New("session changed while the send was in flight")
)

const apologyText = "Sorry, I'm having trouble reaching the advisor service right now. " +
	"Please try again in a moment."

// Router turns a user utterance into exactly one appended assistant message.
// The send path is picked once per call from the manager state: persistent
// (server owns history) or stateless (full transcript replayed along with
// the accumulated policy-id context).
type Router struct {
	backend   core.Backend
	manager   *session.Manager
	store     *conversation.Store
	selection *selection.Set
	window    int

	mu        sync.Mutex
	inFlight  bool
	policyIDs []string
	seen      map[string]struct{}
}

func NewRouter(
	backend core.Backend,
	manager *session.Manager,
	store *conversation.Store,
	sel *selection.Set,
	replayWindow int,
) *Router {
	return &Router{
		backend:   backend,
		manager:   manager,
		store:     store,
		selection: sel,
		window:    replayWindow,
		seen:      make(map[string]struct{}),
	}
}

type sendStrategy func(ctx context.Context, content string) (core.ChatResponse, error)

// Send appends the user turn, runs the selected strategy, and appends the
// normalized response. A transport failure appends a fixed apology instead;
// the user turn stays visible and nothing is retried.
func (r *Router) Send(ctx context.Context, content string) (core.Message, error) {
	r.mu.Lock()
	if r.inFlight {
		r.mu.Unlock()
		return core.Message{}, ErrSendInFlight
	}
	r.inFlight = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight = false
		r.mu.Unlock()
	}()

	state, sessionID := r.manager.Active()
	if state != session.StateReady && state != session.StateStateless {
		return core.Message{}, session.ErrNotReady
	}

	r.store.Append(core.Message{Role: core.RoleUser, Content: content})

	// A Ready manager with no backing id happens after a failed best-effort
	// reset; those turns go through the stateless path too.
	stateless := state == session.StateStateless || sessionID == ""
	send := r.persistent(sessionID)
	if stateless {
		send = r.stateless()
	}

	resp, err := send(ctx, content)

	// The send was tagged with the session it targeted. If the user switched
	// away while it was in flight, the response belongs to a conversation
	// that is no longer on screen and must not be appended anywhere.
	if nowState, nowID := r.manager.Active(); nowState != state || nowID != sessionID {
		log.FromCtx(ctx).Debug().Str("session", sessionID).Msg("discarding stale send result")
		return core.Message{}, ErrSessionSwitched
	}

	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("send failed")
		msg := core.Message{
			Role:    core.RoleAssistant,
			Kind:    core.KindQuestion,
			Content: apologyText,
		}
		r.store.Append(msg)
		return msg, nil
	}

	msg := Normalize(resp)
	if stateless {
		r.accumulate(resp.UploadedPolicyIDs)
	}
	if msg.Kind == core.KindResults {
		// A new result list invalidates any selection made against the old one.
		r.selection.Clear()
	}
	r.store.Append(msg)
	return msg, nil
}

func (r *Router) persistent(sessionID string) sendStrategy {
	return func(ctx context.Context, content string) (core.ChatResponse, error) {
		return r.backend.SendMessage(ctx, sessionID, content)
	}
}

func (r *Router) stateless() sendStrategy {
	return func(ctx context.Context, content string) (core.ChatResponse, error) {
		// The user turn is already in the store, so the replayed transcript
		// ends with it.
		transcript := r.store.Transcript(r.window)
		return r.backend.DiscoverChat(ctx, transcript, r.PolicyIDs())
	}
}

// PolicyIDs returns the accumulated cross-turn policy-id context, in the
// order the ids first surfaced.
func (r *Router) PolicyIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.policyIDs))
	copy(out, r.policyIDs)
	return out
}

// Reset drops the accumulated policy-id context. Called on session
// switch/create: ids surfaced by another conversation must not leak into
// this one's term lookups.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policyIDs = nil
	r.seen = make(map[string]struct{})
}

func (r *Router) accumulate(ids []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.seen[id]; ok {
			continue
		}
		r.seen[id] = struct{}{}
		r.policyIDs = append(r.policyIDs, id)
	}
}

// Normalize maps the backend's response shape into one typed assistant
// message, switching on the response type tag.
func Normalize(resp core.ChatResponse) core.Message {
	msg := core.Message{
		Role:    core.RoleAssistant,
		Content: resp.Message,
		Kind:    core.MessageKind(resp.Type),
	}

	switch msg.Kind {
	case core.KindResults, core.KindNoResults:
		msg.Results = &core.ResultsPayload{
			Policies:   resp.Policies,
			Extracted:  resp.ExtractedRequirements,
			TotalFound: resp.TotalFound,
		}
	case core.KindExplanation:
		msg.Explanation = &core.ExplanationPayload{
			Found:      resp.Found,
			Example:    resp.Example,
			Citation:   resp.Citation,
			PolicyName: resp.PolicyName,
		}
	}
	return msg
}
