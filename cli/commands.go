// Package cli holds the command tree of the bot.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/soocke/reel-bot-go/app"
	"github.com/soocke/reel-bot-go/config"
	"github.com/soocke/reel-bot-go/debug"
	"github.com/soocke/reel-bot-go/domain/action"
	"github.com/soocke/reel-bot-go/ui/images"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath string
	LogLevel   string
}

// NewRootCmd builds the command tree. extra adds commands that need the
// shared options, such as the control window.
func NewRootCmd(extra ...func(*Options) *cobra.Command) *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:           "reel-bot",
		Short:         "Automates the angling minigame of a desktop game",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), opts)
		},
	}
	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to the YAML configuration")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override logging.level (debug|info|warn|error)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the fishing loop until interrupted",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runBot(cmd.Context(), opts)
			},
		},
		newWindowsCmd(),
		newRegionsCmd(opts),
		newConfigCmd(opts),
	)
	for _, add := range extra {
		root.AddCommand(add(opts))
	}
	return root
}

// Session is the shared setup of every command that touches the game.
type Session struct {
	Config *config.Config
	Logger *slog.Logger
	closer io.Closer
}

// OpenSession loads and validates the configuration and opens the logger.
func OpenSession(opts *Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", opts.ConfigPath, err)
	}
	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if cfg.Debug && opts.LogLevel == "" {
		level = "debug"
	}
	logger, closer, err := NewLogger(level, cfg.Logging.Format, cfg.Logging.File)
	if err != nil {
		return nil, err
	}
	return &Session{Config: cfg, Logger: logger, closer: closer}, nil
}

func (s *Session) Close() { _ = s.closer.Close() }

// StartDiagnostics logs capture statistics and, in debug mode, runtime
// statistics until ctx ends.
func (s *Session) StartDiagnostics(ctx context.Context, c *app.Container) {
	go c.Frames.LogStats(ctx, s.Config.Capture.StatsInterval.D())
	if s.Config.Debug {
		debug.StartGoroutineLogger(ctx, s.Config.Capture.StatsInterval.D(), s.Logger)
		debug.StartMemLogger(ctx, s.Config.Capture.StatsInterval.D(), s.Logger)
	}
}

func runBot(parent context.Context, opts *Options) error {
	s, err := OpenSession(opts)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(ContextOrBackground(parent), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := app.BuildContainer(s.Config, s.Logger)
	if err != nil {
		s.Logger.Error("startup failed", "error", err)
		return err
	}
	if err := c.AttachWindow(ctx); err != nil {
		s.Logger.Error("startup failed", "error", err)
		return err
	}
	s.StartDiagnostics(ctx, c)

	bot, err := c.NewBot()
	if err != nil {
		return err
	}
	s.Logger.Info("bot started", "window", s.Config.Game.WindowTitle, "config", opts.ConfigPath)
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	st := bot.Stats()
	s.Logger.Info("bot stopped", "cycles", st.Cycles, "catches", st.Catches, "failures", st.Failures)
	return nil
}

func newWindowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "windows [keyword]",
		Short: "List visible top-level windows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := action.NewWindowSystem().List()
			if err != nil {
				return err
			}
			keyword := ""
			if len(args) == 1 {
				keyword = args[0]
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "HANDLE\tSTATE\tGEOMETRY\tTITLE")
			for _, w := range action.FilterWindows(all, keyword) {
				fmt.Fprintf(tw, "%#x\t%s\t%s\t%s\n", w.Handle, w.State(), w.Geometry, w.Title)
			}
			return tw.Flush()
		},
	}
}

func newRegionsCmd(opts *Options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Capture the game window and write the detection regions as images",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := OpenSession(opts)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := app.BuildContainer(s.Config, s.Logger)
			if err != nil {
				return err
			}
			if err := c.AttachWindow(ContextOrBackground(cmd.Context())); err != nil {
				return err
			}
			frame, g, err := c.CaptureWindow()
			if err != nil {
				return err
			}
			defer c.Frames.Release(frame)
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
			labels := app.RegionLabels(s.Config.Detection, g)
			if err := images.WritePNG(filepath.Join(out, "regions.png"), images.Annotate(frame, labels)); err != nil {
				return err
			}
			for _, l := range labels {
				crop, err := images.Crop(frame, l.Rect)
				if err != nil {
					s.Logger.Warn("region crop failed", "region", l.Text, "error", err)
					continue
				}
				if err := images.WritePNG(filepath.Join(out, l.Text+".png"), crop); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d regions for %s to %s\n", len(labels), g, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "regions", "output directory")
	return cmd
}

func newConfigCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}
	get := &cobra.Command{
		Use:   "get <path>",
		Short: "Print an effective value, e.g. fishing.tension_phase.duration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			v, ok := cfg.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown config key %q", args[0])
			}
			data, err := yaml.Marshal(v)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.ConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.AddCommand(get, initCmd)
	return cmd
}

// ContextOrBackground returns ctx, or the background context when nil.
func ContextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
