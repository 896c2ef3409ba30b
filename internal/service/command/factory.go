package command

import (
	"github.com/sandevgo/policyadvisor/internal/core"
	"github.com/sandevgo/policyadvisor/internal/service/conversation"
	"github.com/sandevgo/policyadvisor/internal/service/dispatch"
	"github.com/sandevgo/policyadvisor/internal/service/selection"
	"github.com/sandevgo/policyadvisor/internal/service/session"
)

func NewCommands(
	backend core.Backend,
	manager *session.Manager,
	directory *session.Directory,
	router *dispatch.Router,
	store *conversation.Store,
	sel *selection.Set,
) []core.Command {
	return []core.Command{
		NewSessionsCommand(directory),
		NewSwitchCommand(manager, directory, router),
		NewNewCommand(manager, router),
		NewDeleteCommand(manager, directory, router),
		NewSelectCommand(store, sel),
		NewSelectionCommand(sel),
		NewCompareCommand(backend, sel),
		NewRequirementsCommand(store),
	}
}
