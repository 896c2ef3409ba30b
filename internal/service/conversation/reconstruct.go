package conversation

import (
	"errors"
	"fmt"

	"github.com/sandevgo/policyadvisor/internal/core"
)

var ErrUnknownRole = errors.New("unknown message role")

// Reconstruct maps persisted records into typed messages, preserving order.
// It is pure: the same input always yields the same output. An unknown role
// is the only hard failure; an unknown kind or missing payload fields pass
// through empty so old sessions keep loading after server-side changes.
func Reconstruct(records []core.StoredRecord) ([]core.Message, error) {
	out := make([]core.Message, 0, len(records))

	for i, rec := range records {
		switch rec.Role {
		case core.RoleUser:
			out = append(out, core.Message{
				Role:    core.RoleUser,
				Content: rec.Content,
			})

		case core.RoleAssistant:
			msg := core.Message{
				Role:    core.RoleAssistant,
				Content: rec.Content,
				Kind:    core.MessageKind(rec.Metadata.Type),
			}
			switch msg.Kind {
			case core.KindResults, core.KindNoResults:
				msg.Results = &core.ResultsPayload{
					Policies:   rec.Metadata.Policies,
					Extracted:  rec.Metadata.ExtractedRequirements,
					TotalFound: rec.Metadata.TotalFound,
				}
			case core.KindExplanation:
				msg.Explanation = &core.ExplanationPayload{
					Found:      rec.Metadata.Found,
					Example:    rec.Metadata.Example,
					Citation:   rec.Metadata.Citation,
					PolicyName: rec.Metadata.PolicyName,
				}
			}
			out = append(out, msg)

		default:
			return nil, fmt.Errorf("record %d has role %q: %w", i, rec.Role, ErrUnknownRole)
		}
	}

	return out, nil
}
