package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"dxcluster/internal/cluster"
	"dxcluster/internal/models"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type connectOptions struct {
	username    string
	password    string
	askPassword bool
	bookmark    string
	save        bool
	wait        time.Duration
}

func newConnectCmd(root *rootOptions) *cobra.Command {
	opts := &connectOptions{}

	cmd := &cobra.Command{
		Use:   "connect [HOST [PORT]]",
		Short: "Connect in line mode",
		Long: `Connect to a cluster and exchange plain lines: every line read from
stdin is sent as a command and everything the server sends is printed.
End of input disconnects.

EXAMPLES:
  dxcluster connect dxc.example.org 7300 --user N0CALL
  dxcluster connect --bookmark N0CALL@dxc.example.org:7300
  echo "sh/dx 10" | dxcluster connect dxc.example.org 7300 --wait 3s`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.username, "user", "u", "", "login name, usually your callsign")
	cmd.Flags().StringVarP(&opts.password, "password", "p", "", "password sent after the login")
	cmd.Flags().BoolVar(&opts.askPassword, "ask-password", false, "read the password from the terminal")
	cmd.Flags().StringVarP(&opts.bookmark, "bookmark", "b", "", "connect to a saved bookmark")
	cmd.Flags().BoolVar(&opts.save, "save", false, "save the connection as a bookmark")
	cmd.Flags().DurationVar(&opts.wait, "wait", 0, "keep printing output for this long after end of input")
	cmd.MarkFlagsMutuallyExclusive("bookmark", "user")
	cmd.MarkFlagsMutuallyExclusive("bookmark", "save")
	return cmd
}

// lineListener prints controller events for line mode and records when the
// session ends.
type lineListener struct {
	out    io.Writer
	errOut io.Writer

	once   sync.Once
	lost   chan struct{}
	reason string
}

func newLineListener(out, errOut io.Writer) *lineListener {
	return &lineListener{out: out, errOut: errOut, lost: make(chan struct{})}
}

func (l *lineListener) OnOutputText(chunk string) {
	fmt.Fprint(l.out, strings.ReplaceAll(chunk, "\r", ""))
}

func (l *lineListener) OnStateChanged(cluster.State) {}

// OnConnectError records the first failure; runConnect returns it.
func (l *lineListener) OnConnectError(message string) {
	l.once.Do(func() {
		l.reason = message
		close(l.lost)
	})
}

func (l *lineListener) OnBookmarksChanged(keys []string) {
	if len(keys) > 0 {
		fmt.Fprintf(l.errOut, "bookmark saved (%d total)\n", len(keys))
	}
}

func (l *lineListener) OnWarning(message string) {
	fmt.Fprintf(l.errOut, "warning: %s\n", message)
}

func runConnect(cmd *cobra.Command, root *rootOptions, opts *connectOptions, args []string) error {
	if opts.bookmark == "" && len(args) == 0 {
		return errors.New("a host or --bookmark is required")
	}
	if opts.bookmark != "" && len(args) > 0 {
		return errors.New("--bookmark cannot be combined with a host")
	}

	rt, err := loadRuntime(root)
	if err != nil {
		return err
	}
	defer rt.Close()

	listener := newLineListener(cmd.OutOrStdout(), cmd.ErrOrStderr())
	ctrl := rt.newController(listener)
	defer ctrl.RequestDisconnect()

	ctx := cmd.Context()
	if opts.bookmark != "" {
		err = ctrl.RequestConnectByBookmark(ctx, opts.bookmark)
	} else {
		var p models.Profile
		p, err = profileFromArgs(args, opts)
		if err != nil {
			return err
		}
		if len(args) < 2 {
			rt.logger.Warn("no port given, using default", "port", models.DefaultPort)
		}
		err = ctrl.RequestConnect(ctx, p, opts.save)
	}
	if err != nil {
		return err
	}

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(cmd.ErrOrStderr(), "connected; type commands, Ctrl-D to disconnect")
	}

	eof := make(chan struct{})
	go func() {
		defer close(eof)
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for scanner.Scan() {
			if !ctrl.RequestSend(scanner.Text()) {
				return
			}
		}
	}()

	select {
	case <-eof:
		if opts.wait > 0 {
			select {
			case <-time.After(opts.wait):
			case <-listener.lost:
			case <-ctx.Done():
			}
		}
	case <-listener.lost:
	case <-ctx.Done():
	}

	ctrl.RequestDisconnect()

	select {
	case <-listener.lost:
		return errors.New(listener.reason)
	default:
		return nil
	}
}

func profileFromArgs(args []string, opts *connectOptions) (models.Profile, error) {
	var port string
	if len(args) > 1 {
		port = args[1]
	}

	password := opts.password
	if opts.askPassword {
		var err error
		password, err = readPassword()
		if err != nil {
			return models.Profile{}, err
		}
	}

	return models.NewProfile(args[0], port, opts.username, password)
}

func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--ask-password needs a terminal")
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
