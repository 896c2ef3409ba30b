package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
)

// RequirementsCommand shows what the advisor extracted from the conversation
// so far, taken from the most recent results message.
type RequirementsCommand struct {
	store *conversation.Store
	fmt   *ResponseFormatter
}

func NewRequirementsCommand(store *conversation.Store) *RequirementsCommand {
	return &RequirementsCommand{store: store, fmt: NewResponseFormatter()}
}

func (c *RequirementsCommand) Name() string { return "requirements" }

func (c *RequirementsCommand) Description() string {
	return "Show what the advisor understood about your needs"
}

func (c *RequirementsCommand) Execute(ctx context.Context, args []string) (string, error) {
	var extracted *core.Requirements
	msgs := c.store.Snapshot()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Results != nil && msgs[i].Results.Extracted != nil {
			extracted = msgs[i].Results.Extracted
			break
		}
	}
	if extracted == nil {
		return c.fmt.Notice("Nothing extracted yet, tell me what you're looking for."), nil
	}

	var sb strings.Builder
	if len(extracted.Needs) > 0 {
		sb.WriteString(c.fmt.Label("Needs", strings.Join(extracted.Needs, ", ")))
	}
	if extracted.BudgetMax != nil {
		sb.WriteString(c.fmt.Label("Budget", fmt.Sprintf("₹%.0f/yr", *extracted.BudgetMax)))
	}
	if extracted.Members != nil {
		sb.WriteString(c.fmt.Label("Members", fmt.Sprintf("%d", *extracted.Members)))
	}
	if len(extracted.PreexistingConditions) > 0 {
		sb.WriteString(c.fmt.Label("Conditions", strings.Join(extracted.PreexistingConditions, ", ")))
	}
	if extracted.PreferredType != "" {
		sb.WriteString(c.fmt.Label("Plan type", extracted.PreferredType))
	}
	if sb.Len() == 0 {
		return c.fmt.Notice("Nothing extracted yet, tell me what you're looking for."), nil
	}
	return c.fmt.Section("Understood so far", sb.String()), nil
}
