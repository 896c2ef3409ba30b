package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/policyadvisor/internal/config"
	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/dispatch"
	"github.com/sandevgo/policyadvisor/internal/service/session"
	"github.com/sandevgo/policyadvisor/internal/service/ui"
	"github.com/sandevgo/policyadvisor/pkg/log"
)

// ReadLine is the interactive chat surface: it reconciles the session on
// startup, replays the restored transcript, then loops on user input,
// routing slash commands locally and everything else through the dispatcher.
type ReadLine struct {
	cfg      *config.AppConfig
	manager  *session.Manager
	router   *dispatch.Router
	commands core.CmdRouter
	store    *conversation.Store
	rl       *readline.Instance
}

func NewReadLine(
	cfg *config.AppConfig,
	manager *session.Manager,
	router *dispatch.Router,
	commands core.CmdRouter,
	store *conversation.Store,
) (*ReadLine, error) {
	// Ensure runtime directory exists
	if err := os.MkdirAll(cfg.RuntimePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     cfg.GetInputHistoryPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		cfg:      cfg,
		manager:  manager,
		router:   router,
		commands: commands,
		store:    store,
		rl:       rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	r.manager.Initialize(ctx)
	if state, _ := r.manager.Active(); state == session.StateStateless {
		fmt.Fprintln(r.rl.Stdout(), ui.WarnStyle.Render(
			"Running without the session service: history won't survive a restart."))
	}

	// Replay whatever the reconciliation put on screen: the restored
	// history or the greeting.
	for _, msg := range r.store.Snapshot() {
		fmt.Fprintln(r.rl.Stdout(), RenderMessage(msg))
	}
	fmt.Fprintln(r.rl.Stdout(), ui.DescStyle.Render("Type /help for commands, 'exit' to quit."))

	for {
		// Check context before blocking read
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "exit" {
			return nil
		}
		if line == "" {
			continue
		}

		if line == "/help" {
			fmt.Fprint(r.rl.Stdout(), r.renderHelp())
			continue
		}
		if out, handled := r.commands.Execute(ctx, line); handled {
			fmt.Fprintln(r.rl.Stdout(), out)
			continue
		}

		msg, err := r.router.Send(ctx, line)
		if err != nil {
			switch {
			case errors.Is(err, dispatch.ErrSessionSwitched):
				// Result belonged to a conversation no longer on screen.
			case errors.Is(err, dispatch.ErrSendInFlight):
				fmt.Fprintln(r.rl.Stdout(), ui.WarnStyle.Render("Still thinking about the last one..."))
			default:
				logger.Error().Err(err).Msg("send failed")
				fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
			}
			continue
		}
		fmt.Fprintln(r.rl.Stdout(), RenderMessage(msg))
	}
}

func (r *ReadLine) renderHelp() string {
	cmds := r.commands.ListCommands()
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })

	var sb strings.Builder
	sb.WriteString(ui.TitleStyle.Render("COMMANDS"))
	sb.WriteString("\n")
	for _, cmd := range cmds {
		sb.WriteString(fmt.Sprintf("  /%-13s %s\n", cmd.Name(), ui.DescStyle.Render(cmd.Description())))
	}
	return sb.String()
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	return r.rl.Close()
}
