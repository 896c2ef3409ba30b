package installer

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandevgo/policyadvisor/internal/config"
	"github.com/sandevgo/policyadvisor/internal/providers/backend"
)

type probeMsg struct{ err error }

// ProbeStep checks that the configured backend answers. A failure is not
// fatal: the client runs stateless against an unreachable backend anyway.
type ProbeStep struct {
	probing bool
	err     error
}

func NewProbeStep() Step {
	return &ProbeStep{}
}

func (s *ProbeStep) Init() tea.Cmd {
	return func() tea.Msg { return nextMsg{} }
}

func (s *ProbeStep) probe(baseURL string) tea.Cmd {
	return func() tea.Msg {
		client := backend.NewClient(&config.BackendConfig{
			BaseURL: baseURL,
			Timeout: 5 * time.Second,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err := client.ListSessions(ctx)
		return probeMsg{err: err}
	}
}

func (s *ProbeStep) Update(msg tea.Msg, state *SetupState, width, height int) (Step, tea.Cmd) {
	if !s.probing {
		s.probing = true
		return s, s.probe(state.EnvVars["POLICYAI_BASE_URL"])
	}

	switch msg := msg.(type) {
	case probeMsg:
		if msg.err == nil {
			return nil, nil
		}
		s.err = msg.err
		return s, nil
	case tea.KeyMsg:
		if s.err == nil {
			return s, nil
		}
		switch msg.String() {
		case "r":
			s.err = nil
			return s, s.probe(state.EnvVars["POLICYAI_BASE_URL"])
		case "enter":
			return nil, nil
		}
	}
	return s, nil
}

func (s *ProbeStep) View(state *SetupState) string {
	if s.err != nil {
		return warnStyle.Render("Could not reach the backend: "+s.err.Error()) +
			"\n\n(press r to retry, enter to continue anyway)\n"
	}
	return "Checking the backend at " + state.EnvVars["POLICYAI_BASE_URL"] + "...\n"
}
