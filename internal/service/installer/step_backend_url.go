package installer

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// BackendURLStep asks where the PolicyAI backend lives.
type BackendURLStep struct {
	input textinput.Model
}

func NewBackendURLStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.Placeholder = "http://localhost:8000"
	return &BackendURLStep{input: ti}
}

func (s *BackendURLStep) Init() tea.Cmd { return nil }

func (s *BackendURLStep) Update(msg tea.Msg, state *SetupState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := s.input.Value()
		if val == "" {
			val = s.input.Placeholder
		}
		state.EnvVars["POLICYAI_BASE_URL"] = val
		return nil, nil
	}

	return s, cmd
}

func (s *BackendURLStep) View(state *SetupState) string {
	return "Enter the PolicyAI backend URL:\n\n" + s.input.View() + "\n\n(press enter to confirm)\n"
}
