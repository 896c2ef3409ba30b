package cli

import (
	"fmt"
	"strings"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/ui"
)

// RenderMessage formats one conversation turn for the terminal, switching
// on the payload variant.
func RenderMessage(msg core.Message) string {
	if msg.Role == core.RoleUser {
		return ">>> " + msg.Content
	}

	var sb strings.Builder
	sb.WriteString(ui.AssistantStyle.Render(msg.Content))
	sb.WriteString("\n")

	switch msg.Kind {
	case core.KindResults:
		if msg.Results != nil {
			sb.WriteString(renderPolicies(msg.Results))
		}
	case core.KindExplanation:
		if msg.Explanation != nil {
			sb.WriteString(renderExplanation(msg.Explanation))
		}
	}
	return sb.String()
}

func renderPolicies(res *core.ResultsPayload) string {
	var sb strings.Builder
	for i, p := range res.Policies {
		sb.WriteString(fmt.Sprintf("  %d. %s", i+1, ui.PolicyNameStyle.Render(p.Name)))
		details := make([]string, 0, 3)
		if p.Insurer != "" {
			details = append(details, p.Insurer)
		}
		if p.PremiumMin > 0 {
			details = append(details, fmt.Sprintf("₹%.0f–%.0f/yr", p.PremiumMin, p.PremiumMax))
		}
		if p.NetworkHospitals > 0 {
			details = append(details, fmt.Sprintf("%d hospitals", p.NetworkHospitals))
		}
		if len(details) > 0 {
			sb.WriteString(ui.DescStyle.Render(" · " + strings.Join(details, " · ")))
		}
		sb.WriteString("\n")
	}
	if res.TotalFound > len(res.Policies) {
		sb.WriteString(ui.DescStyle.Render(
			fmt.Sprintf("  (%d matched in total)", res.TotalFound)))
		sb.WriteString("\n")
	}
	if len(res.Policies) > 0 {
		sb.WriteString(ui.DescStyle.Render("  Use /select <number> to queue policies for /compare."))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderExplanation(exp *core.ExplanationPayload) string {
	var sb strings.Builder
	if exp.Example != "" {
		sb.WriteString("  Example: " + exp.Example + "\n")
	}
	if exp.Citation != "" {
		citation := exp.Citation
		if exp.PolicyName != "" {
			citation += " — " + exp.PolicyName
		}
		sb.WriteString(ui.CitationStyle.Render("  " + citation))
		sb.WriteString("\n")
	}
	return sb.String()
}
