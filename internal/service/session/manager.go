package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/selection"
	"github.com/sandevgo/policyadvisor/pkg/log"
)

// State of the session manager. The only legal paths are
// Uninitialized → Restoring → Ready and Uninitialized → Restoring → Stateless.
type State int

const (
	StateUninitialized State = iota
	StateRestoring
	StateReady
	StateStateless
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRestoring:
		return "restoring"
	case StateReady:
		return "ready"
	case StateStateless:
		return "stateless"
	default:
		return "unknown"
	}
}

var ErrNotReady = errors.New("session manager is not ready")

// SlotActiveSession is the well-known name of the durable slot holding the
// active session id across restarts.
const SlotActiveSession = "active_session_id"

// Manager owns the active session identity, the persistence-mode state
// machine, and all writes to the durable slot. Every mutating operation
// runs under one lock, so the slot has a single writer at a time.
type Manager struct {
	mu       sync.Mutex
	state    State
	activeID string

	backend   core.Backend
	slot      core.SlotStore
	store     *conversation.Store
	selection *selection.Set
	directory *Directory
}

func NewManager(
	backend core.Backend,
	slot core.SlotStore,
	store *conversation.Store,
	sel *selection.Set,
	directory *Directory,
) *Manager {
	return &Manager{
		state:     StateUninitialized,
		backend:   backend,
		slot:      slot,
		store:     store,
		selection: sel,
		directory: directory,
	}
}

// Active returns the current mode and session id under one lock, so callers
// see a consistent pair.
func (m *Manager) Active() (State, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.activeID
}

// Initialize runs the startup reconciliation. Every failure recovers
// locally: a stale durable reference is discarded and a fresh session
// created; if even creation fails the manager degrades to stateless mode.
// The conversation is always usable afterwards.
func (m *Manager) Initialize(ctx context.Context) {
	logger := log.FromCtx(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateRestoring

	id, err := m.slot.Get(ctx, SlotActiveSession)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read durable session slot")
		id = ""
	}

	if id != "" {
		if m.restoreLocked(ctx, id) {
			logger.Info().Str("session", id).Msg("restored session")
			return
		}
		// The stored id no longer resolves; drop it and start over.
		if err := m.slot.Clear(ctx, SlotActiveSession); err != nil {
			logger.Warn().Err(err).Msg("failed to clear stale session slot")
		}
		logger.Info().Str("session", id).Msg("stored session expired, creating a new one")
	}

	if m.createLocked(ctx) {
		logger.Info().Str("session", m.activeID).Msg("created session")
		return
	}

	// Backend unreachable: stay usable, resend context from the client side.
	m.state = StateStateless
	m.activeID = ""
	m.store.ReplaceAll([]core.Message{conversation.Greeting()})
	m.selection.Clear()
	logger.Warn().Msg("backend unreachable, running in stateless mode")
}

// Switch makes the given session active: fetch its history, replace the
// conversation wholesale, persist the new reference, reset derived state.
func (m *Manager) Switch(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady && m.state != StateStateless {
		return ErrNotReady
	}

	if !m.restoreLocked(ctx, id) {
		return fmt.Errorf("failed to switch to session %s", id)
	}

	m.selection.Clear()
	if err := m.slot.Set(ctx, SlotActiveSession, id); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist session reference")
	}
	return nil
}

// Create starts a fresh session. If the backend refuses, the local state is
// reset anyway (greeting, empty selection) without flipping the mode: a
// best-effort new conversation with nothing durably remembered.
func (m *Manager) Create(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady && m.state != StateStateless {
		return ErrNotReady
	}

	if m.createLocked(ctx) {
		return nil
	}

	log.FromCtx(ctx).Warn().Msg("session creation failed, resetting locally")
	m.activeID = ""
	if err := m.slot.Clear(ctx, SlotActiveSession); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to clear session slot")
	}
	m.store.ReplaceAll([]core.Message{conversation.Greeting()})
	m.selection.Clear()
	return nil
}

// Delete removes a session. A backend failure is ignored and the directory
// entry kept, per the "nothing is fatal" rule. Deleting the active session
// replaces it with a newly created one.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateReady && m.state != StateStateless {
		return ErrNotReady
	}

	if err := m.backend.DeleteSession(ctx, id); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", id).Msg("delete failed, keeping session")
		return nil
	}
	m.directory.Remove(id)

	if id != m.activeID {
		return nil
	}

	// The active conversation is gone; the slot must not keep pointing at it.
	m.activeID = ""
	if err := m.slot.Clear(ctx, SlotActiveSession); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to clear session slot")
	}

	if !m.createLocked(ctx) {
		m.store.ReplaceAll([]core.Message{conversation.Greeting()})
		m.selection.Clear()
	}
	return nil
}

// restoreLocked fetches the target history and swaps it in. Returns false on
// any failure so the caller can pick the recovery. Callers hold m.mu.
func (m *Manager) restoreLocked(ctx context.Context, id string) bool {
	logger := log.FromCtx(ctx)

	sess, records, err := m.backend.GetSession(ctx, id)
	if err != nil {
		logger.Debug().Err(err).Str("session", id).Msg("session fetch failed")
		return false
	}

	msgs, err := conversation.Reconstruct(records)
	if err != nil {
		logger.Warn().Err(err).Str("session", id).Msg("history reconstruction failed")
		return false
	}
	if len(msgs) == 0 {
		msgs = []core.Message{conversation.Greeting()}
	}

	m.store.ReplaceAll(msgs)
	if sess.ID != "" {
		id = sess.ID
	}
	m.activeID = id
	m.state = StateReady
	return true
}

// createLocked asks the backend for a new session and resets local state
// around it. Returns false when the backend is unreachable. Callers hold m.mu.
func (m *Manager) createLocked(ctx context.Context) bool {
	sess, err := m.backend.CreateSession(ctx)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Msg("session creation failed")
		return false
	}

	if err := m.slot.Set(ctx, SlotActiveSession, sess.ID); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to persist session reference")
	}

	m.store.ReplaceAll([]core.Message{conversation.Greeting()})
	m.selection.Clear()
	m.activeID = sess.ID
	m.state = StateReady
	return true
}
