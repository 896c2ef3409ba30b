package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// TimeoutStep picks how long a single backend call may take. Recommendation
// turns can be slow, so the default is generous.
type TimeoutStep struct {
	choices []string
	cursor  int
}

func NewTimeoutStep() Step {
	return &TimeoutStep{
		choices: []string{"30s", "60s", "120s"},
		cursor:  1,
	}
}

func (s *TimeoutStep) Init() tea.Cmd {
	return nil
}

func (s *TimeoutStep) Update(msg tea.Msg, state *SetupState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars["POLICYAI_TIMEOUT"] = s.choices[s.cursor]
			return nil, nil
		}
	}
	return s, nil
}

func (s *TimeoutStep) View(state *SetupState) string {
	var b strings.Builder
	b.WriteString("Select the request timeout:\n\n")
	for i, choice := range s.choices {
		cursor := " "
		if s.cursor == i {
			cursor = "❯"
			b.WriteString(selStyle.Render(fmt.Sprintf("%s %s", cursor, choice)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("%s %s", cursor, choice)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
