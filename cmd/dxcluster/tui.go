package main

import (
	"errors"
	"os"

	"dxcluster/internal/ui"
	"dxcluster/internal/ui/views"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoTerminal = errors.New("the interactive UI needs a terminal; use 'dxcluster connect' for line mode")

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, opts)
		},
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return errNoTerminal
	}

	rt, err := loadRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	queue := ui.NewEventQueue()
	ctrl := rt.newController(queue)
	defer ctrl.RequestDisconnect()

	model := ui.NewModel(ctrl, queue, rt.logger)
	if w, h, err := term.GetSize(fd); err == nil {
		model.SetTerminalSize(w, h)
	}

	rt.logger.Info("starting terminal UI")
	p := tea.NewProgram(views.NewApp(model), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		rt.logger.Error("terminal UI failed", "error", err)
		return err
	}
	return nil
}
