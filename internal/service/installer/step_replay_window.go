package installer

import (
	"strconv"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ReplayWindowStep sets how many conversation turns are resent per message
// when the session service is unavailable.
type ReplayWindowStep struct {
	input   textinput.Model
	invalid bool
}

func NewReplayWindowStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.Placeholder = "30"
	ti.CharLimit = 4
	return &ReplayWindowStep{input: ti}
}

func (s *ReplayWindowStep) Init() tea.Cmd { return nil }

func (s *ReplayWindowStep) Update(msg tea.Msg, state *SetupState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := s.input.Value()
		if val == "" {
			val = s.input.Placeholder
		}
		if n, err := strconv.Atoi(val); err != nil || n < 1 {
			s.invalid = true
			return s, cmd
		}
		state.EnvVars["REPLAY_WINDOW"] = val
		return nil, nil
	}

	return s, cmd
}

func (s *ReplayWindowStep) View(state *SetupState) string {
	out := "How many turns to replay in stateless mode:\n\n" + s.input.View() + "\n\n(press enter to confirm)\n"
	if s.invalid {
		out += warnStyle.Render("Please enter a positive number.") + "\n"
	}
	return out
}
