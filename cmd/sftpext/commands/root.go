// Package commands implements the sftpext command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sftpext/sftpext"
	"github.com/sftpext/sftpext/internal/config"
	"github.com/sftpext/sftpext/internal/output"
	"github.com/sftpext/sftpext/session"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// app holds the state of one invocation.
type app struct {
	cfgFile string
	dial    session.Dialer

	cfg     *config.Config
	logger  *slog.Logger
	printer *output.Printer

	// registry and observer are set by watch.
	registry *prometheus.Registry
	observer sftpext.RequestObserver
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand returns the root command, connecting over SSH.
func NewRootCommand() *cobra.Command {
	return newApp(session.DialSSH).rootCommand()
}

func newApp(dial session.Dialer) *app {
	return &app{dial: dial}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "sftpext",
		Short: "Query OpenSSH SFTP protocol extensions",
		Long: `sftpext connects to an SFTP server over SSH, negotiates the protocol,
and queries the OpenSSH extensions the server advertises.

Every option can be set in the config file, or through the environment
as SFTPEXT_<KEY>, for example SFTPEXT_LOGGING_LEVEL=debug.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/sftpext/config.yaml)")
	pf.String("host", "", "SFTP server host")
	pf.IntP("port", "p", 22, "SFTP server port")
	pf.StringP("user", "u", "", "SSH user")
	pf.String("password", "", "SSH password")
	pf.StringP("key-file", "i", "", "SSH private key file")
	pf.Bool("use-agent", false, "authenticate with the ssh-agent at $SSH_AUTH_SOCK")
	pf.String("known-hosts", "", "known_hosts file (default: ~/.ssh/known_hosts)")
	pf.Bool("insecure-ignore-host-key", false, "accept any host key")
	pf.Duration("timeout", 30*time.Second, "connect and handshake timeout")
	pf.Int("max-packet-length", 0, "maximum reply packet length (0: client default)")
	pf.StringP("output", "o", "table", "output format (table|json|yaml)")
	pf.String("log-level", "info", "log level (debug|info|warn|error)")
	pf.Bool("no-color", false, "disable colored logs")

	root.AddCommand(
		a.versionCommand(),
		a.extensionsCommand(),
		a.statvfsCommand(),
		a.homedirCommand(),
		a.idsCommand(),
		a.expandCommand(),
		a.limitsCommand(),
		a.watchCommand(),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Logging)
	a.printer = output.NewPrinter(cmd.OutOrStdout(), format)

	return nil
}

func newLogger(w io.Writer, cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    cfg.NoColor,
	})

	return slog.New(handler).With("app", "sftpext")
}

// manager builds a session manager from the loaded configuration.
// The returned closer releases authentication resources.
func (a *app) manager() (*session.Manager, io.Closer, error) {
	auth, closer, err := session.AuthMethods(session.AuthOptions{
		Password:      a.cfg.Password,
		KeyFile:       a.cfg.KeyFile,
		KeyPassphrase: a.cfg.KeyPassphrase,
		UseAgent:      a.cfg.UseAgent,
	})
	if err != nil {
		return nil, nil, err
	}

	hostKey, err := session.HostKeyCallback(a.cfg.KnownHostsFile, a.cfg.InsecureIgnoreHostKey)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	opts := []sftpext.ClientOption{
		sftpext.WithLogger(a.logger),
	}
	if a.cfg.MaxPacketLength > 0 {
		opts = append(opts, sftpext.WithMaxPacketLength(a.cfg.MaxPacketLength))
	}
	if a.observer != nil {
		opts = append(opts, sftpext.WithMetrics(a.observer))
	}

	mgr := session.NewManager(session.Config{
		Host:            a.cfg.Host,
		Port:            a.cfg.Port,
		User:            a.cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         a.cfg.Timeout,
		ClientOptions:   opts,
	}, session.WithDialer(a.dial), session.WithLogger(a.logger))

	return mgr, closer, nil
}

// run executes fn over a managed connection and prints its result.
// Failures are reported as "<name> failed: <cause>".
func (a *app) run(ctx context.Context, name string, fn func(context.Context, *sftpext.Client) (any, error)) error {
	mgr, closer, err := a.manager()
	if err != nil {
		return errors.Wrapf(err, "%s failed", name)
	}
	defer closer.Close()

	var result any
	err = mgr.Do(ctx, func(cl *sftpext.Client) (err error) {
		result, err = fn(ctx, cl)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "%s failed", name)
	}

	return a.printer.Print(result)
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// No configuration is needed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("sftpext %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}
