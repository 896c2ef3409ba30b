package core

import "context"

// Backend is the PolicyAI HTTP API, consumed as a black box.
type Backend interface {
	CreateSession(ctx context.Context) (Session, error)
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	GetSession(ctx context.Context, id string) (Session, []StoredRecord, error)
	SendMessage(ctx context.Context, sessionID, content string) (ChatResponse, error)
	DiscoverChat(ctx context.Context, transcript []TranscriptEntry, policyIDs []string) (ChatResponse, error)
	ComparePolicies(ctx context.Context, policyIDs []string) (Comparison, error)
	DeleteSession(ctx context.Context, id string) error
}

// SlotStore is a durable single-value store keyed by a well-known name.
// Get returns "" with a nil error when the slot is empty.
type SlotStore interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	Clear(ctx context.Context, name string) error
}
