package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/selection"
)

// latestResults walks the transcript backwards to the policy list currently
// on screen. Selection indices are always relative to it.
func latestResults(store *conversation.Store) *core.ResultsPayload {
	msgs := store.Snapshot()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == core.KindResults && msgs[i].Results != nil {
			return msgs[i].Results
		}
	}
	return nil
}

type SelectCommand struct {
	store     *conversation.Store
	selection *selection.Set
	fmt       *ResponseFormatter
}

func NewSelectCommand(store *conversation.Store, sel *selection.Set) *SelectCommand {
	return &SelectCommand{store: store, selection: sel, fmt: NewResponseFormatter()}
}

func (c *SelectCommand) Name() string { return "select" }

func (c *SelectCommand) Description() string {
	return "Pick a policy from the last results for comparison: /select <number>"
}

func (c *SelectCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return c.fmt.Usage("/select <number>"), nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return c.fmt.Usage("/select <number>"), nil
	}

	results := latestResults(c.store)
	if results == nil || len(results.Policies) == 0 {
		return c.fmt.Notice("No policy results to select from yet."), nil
	}
	if n < 1 || n > len(results.Policies) {
		return "", fmt.Errorf("no policy #%d in the last results", n)
	}

	policy := results.Policies[n-1]
	if c.selection.Contains(policy.ID) {
		c.selection.Toggle(policy.ID, policy.Name)
		return c.fmt.Success(fmt.Sprintf("Removed %s from the comparison.", policy.Name)), nil
	}

	if !c.selection.Toggle(policy.ID, policy.Name) {
		return c.fmt.Notice(fmt.Sprintf(
			"Comparison is full (%d policies). Remove one first.", selection.Capacity)), nil
	}
	return c.fmt.Success(fmt.Sprintf(
		"Added %s (%d/%d selected).", policy.Name, c.selection.Len(), selection.Capacity)), nil
}

type SelectionCommand struct {
	selection *selection.Set
	fmt       *ResponseFormatter
}

func NewSelectionCommand(sel *selection.Set) *SelectionCommand {
	return &SelectionCommand{selection: sel, fmt: NewResponseFormatter()}
}

func (c *SelectionCommand) Name() string { return "selection" }

func (c *SelectionCommand) Description() string {
	return "Show the policies queued for comparison"
}

func (c *SelectionCommand) Execute(ctx context.Context, args []string) (string, error) {
	entries := c.selection.Entries()
	if len(entries) == 0 {
		return c.fmt.Notice("Nothing selected. Use /select <number> after a results list."), nil
	}

	items := make([]string, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.DisplayName)
	}
	return c.fmt.Section("Queued for comparison", c.fmt.List(items)), nil
}

type CompareCommand struct {
	backend   core.Backend
	selection *selection.Set
	fmt       *ResponseFormatter
}

func NewCompareCommand(backend core.Backend, sel *selection.Set) *CompareCommand {
	return &CompareCommand{backend: backend, selection: sel, fmt: NewResponseFormatter()}
}

func (c *CompareCommand) Name() string { return "compare" }

func (c *CompareCommand) Description() string {
	return "Compare the selected policies side by side"
}

func (c *CompareCommand) Execute(ctx context.Context, args []string) (string, error) {
	// Fewer than two selections is a no-op, not an error.
	if !c.selection.CanCompare() {
		return c.fmt.Notice(fmt.Sprintf(
			"Select at least %d policies first with /select.", selection.MinCompare)), nil
	}

	cmp, err := c.backend.ComparePolicies(ctx, c.selection.IDs())
	if err != nil {
		return "", err
	}
	if cmp.Error != "" {
		return c.fmt.Notice(cmp.Error), nil
	}

	c.selection.SetComparison(&cmp)
	return formatComparison(&cmp), nil
}

func formatComparison(cmp *core.Comparison) string {
	var sb strings.Builder

	names := make([]string, 0, len(cmp.Policies))
	for _, p := range cmp.Policies {
		names = append(names, p.Name)
	}
	sb.WriteString("Comparing: " + strings.Join(names, " vs ") + "\n\n")

	for _, row := range cmp.Table {
		dimension, _ := row["dimension"].(string)
		sb.WriteString(fmt.Sprintf("%-32s", dimension))
		for _, name := range names {
			sb.WriteString(fmt.Sprintf("  %v", cellValue(row[name])))
		}
		sb.WriteString("\n")
	}

	if cmp.Summary != "" {
		sb.WriteString("\n" + cmp.Summary + "\n")
	}
	for name, reason := range cmp.BestFor {
		sb.WriteString(fmt.Sprintf("%s — best for %s\n", name, reason))
	}
	return sb.String()
}

func cellValue(v any) string {
	if v == nil {
		return "—"
	}
	switch t := v.(type) {
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case float64:
		// JSON numbers decode as float64; render integers cleanly.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', 2, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
