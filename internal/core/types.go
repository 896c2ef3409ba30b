package core

import (
	"encoding/json"
	"time"
)

const (
	AppName      = "PolicyAdvisor"
	AppUserAgent = "PolicyAdvisor-CLI/0.1"
	AppVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MessageKind tags the payload variant of an assistant message. The value
// comes straight from the backend's `type` field; unknown values are kept
// as-is and rendered as plain text.
type MessageKind string

const (
	KindQuestion    MessageKind = "question"
	KindResults     MessageKind = "results"
	KindNoResults   MessageKind = "no_results"
	KindExplanation MessageKind = "explanation"
)

// Message is one conversation turn. Kind and the payload pointers are set
// only on assistant messages; user messages carry Content alone.
type Message struct {
	Role        string
	Content     string
	Kind        MessageKind
	Results     *ResultsPayload
	Explanation *ExplanationPayload
}

// ResultsPayload is the variant attached to messages of kind `results`
// and `no_results` (the latter with an empty policy list).
type ResultsPayload struct {
	Policies   []Policy
	Extracted  *Requirements
	TotalFound int
}

// ExplanationPayload is the variant attached to messages of kind `explanation`.
type ExplanationPayload struct {
	Found      bool
	Example    string
	Citation   string
	PolicyName string
}

// Policy is one ranked catalog entry as returned by the backend. RAGInsights
// is kept raw: its shape depends on whether a matching uploaded PDF existed
// server-side, and the client only passes it through.
type Policy struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Insurer          string          `json:"insurer"`
	Type             string          `json:"type,omitempty"`
	PremiumMin       float64         `json:"premium_min,omitempty"`
	PremiumMax       float64         `json:"premium_max,omitempty"`
	SumInsuredMin    float64         `json:"sum_insured_min,omitempty"`
	SumInsuredMax    float64         `json:"sum_insured_max,omitempty"`
	NetworkHospitals int             `json:"network_hospitals,omitempty"`
	Score            float64         `json:"score,omitempty"`
	RAGInsights      json.RawMessage `json:"rag_insights,omitempty"`
	UploadedPolicyID string          `json:"uploaded_policy_id,omitempty"`
}

// Requirements is the structured extraction of what the user asked for.
type Requirements struct {
	Needs                 []string `json:"needs"`
	BudgetMax             *float64 `json:"budget_max,omitempty"`
	Members               *int     `json:"members,omitempty"`
	PreexistingConditions []string `json:"preexisting_conditions,omitempty"`
	PreferredType         string   `json:"preferred_type,omitempty"`
	SumInsuredMin         *float64 `json:"sum_insured_min,omitempty"`
}

// Session is a server-identified conversation thread.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"session_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionSummary is the directory listing entry. Not guaranteed fresh; the
// directory refetches on demand rather than keeping it in sync.
type SessionSummary struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Name      string    `json:"session_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StoredRecord is a raw persisted message row from the backend. The metadata
// column carries whatever the server attached to the assistant turn.
type StoredRecord struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  RecordMetadata `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// RecordMetadata mirrors the auxiliary fields the backend persists per
// assistant message. Absent fields stay zero-valued.
type RecordMetadata struct {
	Type                  string        `json:"type,omitempty"`
	Policies              []Policy      `json:"policies,omitempty"`
	ExtractedRequirements *Requirements `json:"extracted_requirements,omitempty"`
	TotalFound            int           `json:"total_found,omitempty"`
	Example               string        `json:"example,omitempty"`
	Citation              string        `json:"citation,omitempty"`
	PolicyName            string        `json:"policy_name,omitempty"`
	Found                 bool          `json:"found,omitempty"`
}

// TranscriptEntry is the minimal role+content pair replayed to the stateless
// chat endpoint.
type TranscriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse is the shared response shape of the persistent and stateless
// send operations. Which optional fields are set depends on Type.
type ChatResponse struct {
	Type                  string        `json:"type"`
	Message               string        `json:"message"`
	Policies              []Policy      `json:"policies,omitempty"`
	ExtractedRequirements *Requirements `json:"extracted_requirements,omitempty"`
	TotalFound            int           `json:"total_found,omitempty"`
	UploadedPolicyIDs     []string      `json:"uploaded_policy_ids,omitempty"`
	Example               string        `json:"example,omitempty"`
	Citation              string        `json:"citation,omitempty"`
	PolicyName            string        `json:"policy_name,omitempty"`
	Found                 bool          `json:"found,omitempty"`
	SessionID             string        `json:"session_id,omitempty"`
}

// Comparison is the side-by-side table for 2-3 policies. Table rows use the
// policy display names as dynamic keys, so they stay loosely typed.
type Comparison struct {
	Policies []Policy          `json:"policies"`
	Table    []map[string]any  `json:"comparison_table"`
	Summary  string            `json:"ai_summary"`
	BestFor  map[string]string `json:"best_for"`
	Error    string            `json:"error,omitempty"`
}
