package command

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/dispatch"
	"github.com/sandevgo/policyadvisor/internal/service/session"
)

// resolveSession turns "/switch 2"-style arguments into a session id: a
// plain number indexes the last listing (1-based), anything else is taken
// as a raw id.
func resolveSession(directory *session.Directory, arg string) (string, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return arg, nil
	}

	cached := directory.Cached()
	if n < 1 || n > len(cached) {
		return "", fmt.Errorf("no session #%d in the last listing, run /sessions first", n)
	}
	return cached[n-1].ID, nil
}

func describeSession(s core.SessionSummary) string {
	name := s.Name
	if name == "" {
		name = s.ID
	}
	if s.UpdatedAt.IsZero() {
		return name
	}
	return fmt.Sprintf("%s (last active %s)", name, s.UpdatedAt.Format(time.DateTime))
}

type SessionsCommand struct {
	directory *session.Directory
	fmt       *ResponseFormatter
}

func NewSessionsCommand(directory *session.Directory) *SessionsCommand {
	return &SessionsCommand{directory: directory, fmt: NewResponseFormatter()}
}

func (c *SessionsCommand) Name() string { return "sessions" }

func (c *SessionsCommand) Description() string {
	return "List recent conversations"
}

func (c *SessionsCommand) Execute(ctx context.Context, args []string) (string, error) {
	sessions, err := c.directory.Refresh(ctx)
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return c.fmt.Notice("No stored conversations yet."), nil
	}

	items := make([]string, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, describeSession(s))
	}
	return c.fmt.Section("Conversations", c.fmt.List(items)), nil
}

type SwitchCommand struct {
	manager   *session.Manager
	directory *session.Directory
	router    *dispatch.Router
	fmt       *ResponseFormatter
}

func NewSwitchCommand(manager *session.Manager, directory *session.Directory, router *dispatch.Router) *SwitchCommand {
	return &SwitchCommand{manager: manager, directory: directory, router: router, fmt: NewResponseFormatter()}
}

func (c *SwitchCommand) Name() string { return "switch" }

func (c *SwitchCommand) Description() string {
	return "Switch to another conversation: /switch <number|id>"
}

func (c *SwitchCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return c.fmt.Usage("/switch <number|id>"), nil
	}

	id, err := resolveSession(c.directory, args[0])
	if err != nil {
		return "", err
	}
	if err := c.manager.Switch(ctx, id); err != nil {
		return "", err
	}
	c.router.Reset()
	return c.fmt.Success("Switched conversation."), nil
}

type NewCommand struct {
	manager *session.Manager
	router  *dispatch.Router
	fmt     *ResponseFormatter
}

func NewNewCommand(manager *session.Manager, router *dispatch.Router) *NewCommand {
	return &NewCommand{manager: manager, router: router, fmt: NewResponseFormatter()}
}

func (c *NewCommand) Name() string { return "new" }

func (c *NewCommand) Description() string {
	return "Start a fresh conversation"
}

func (c *NewCommand) Execute(ctx context.Context, args []string) (string, error) {
	if err := c.manager.Create(ctx); err != nil {
		return "", err
	}
	c.router.Reset()
	return c.fmt.Success("Started a fresh conversation."), nil
}

type DeleteCommand struct {
	manager   *session.Manager
	directory *session.Directory
	router    *dispatch.Router
	fmt       *ResponseFormatter
}

func NewDeleteCommand(manager *session.Manager, directory *session.Directory, router *dispatch.Router) *DeleteCommand {
	return &DeleteCommand{manager: manager, directory: directory, router: router, fmt: NewResponseFormatter()}
}

func (c *DeleteCommand) Name() string { return "delete" }

func (c *DeleteCommand) Description() string {
	return "Delete a conversation: /delete <number|id>"
}

func (c *DeleteCommand) Execute(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return c.fmt.Usage("/delete <number|id>"), nil
	}

	id, err := resolveSession(c.directory, args[0])
	if err != nil {
		return "", err
	}

	_, active := c.manager.Active()
	if err := c.manager.Delete(ctx, id); err != nil {
		return "", err
	}
	if id == active {
		c.router.Reset()
		return c.fmt.Success("Deleted the active conversation, started a fresh one."), nil
	}
	return c.fmt.Success("Deleted."), nil
}
