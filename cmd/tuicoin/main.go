// Package main provides the CLI entrypoint for tuicoin.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuicoin/internal/config"
	"github.com/verte-zerg/tuicoin/internal/historyui"
	"github.com/verte-zerg/tuicoin/internal/logging"
	"github.com/verte-zerg/tuicoin/internal/model"
	"github.com/verte-zerg/tuicoin/internal/outcome"
	"github.com/verte-zerg/tuicoin/internal/server"
	"github.com/verte-zerg/tuicoin/internal/spin"
	"github.com/verte-zerg/tuicoin/internal/store"
	"github.com/verte-zerg/tuicoin/internal/tui"
)

const (
	defaultSource      = outcome.KindHTTP
	defaultTimeout     = 5 * time.Second
	defaultRevealDelay = 1500 * time.Millisecond
	defaultFPS         = 60
	defaultAddr        = "127.0.0.1:5000"
	defaultWindow      = 10
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

var (
	tossSource      string
	tossURL         string
	tossTimeout     time.Duration
	tossRevealDelay time.Duration
	tossFPS         int

	spinParams = spin.DefaultParams()

	logLevel  string
	logFormat string

	flipJSON bool

	serveAddr string

	historySource string
	historySince  string
	historyLast   int
	historyWindow int
	historyFormat string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuicoin",
		Short:         "TUI coin toss",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runTossCmd,
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "log format (text, json)")

	addTossFlags(rootCmd)
	defaults := spin.DefaultParams()
	rootCmd.Flags().Float64Var(&spinParams.IdleRate, "idle-rate", defaults.IdleRate, "idle rotation (rad/s)")
	rootCmd.Flags().Float64Var(&spinParams.SpinRate, "spin-rate", defaults.SpinRate, "rotation while tossing (rad/s)")
	rootCmd.Flags().Float64Var(&spinParams.WobbleAmplitude, "wobble-amplitude", defaults.WobbleAmplitude, "wobble amplitude while tossing (rad)")
	rootCmd.Flags().Float64Var(&spinParams.WobbleFrequency, "wobble-frequency", defaults.WobbleFrequency, "wobble frequency (rad/s)")
	rootCmd.Flags().Float64Var(&spinParams.LandingFactor, "landing-factor", defaults.LandingFactor, "per-frame landing interpolation factor (0-1]")
	rootCmd.Flags().Float64Var(&spinParams.WobbleDamp, "wobble-damp", defaults.WobbleDamp, "per-frame wobble damping factor (0-1]")
	rootCmd.Flags().Float64Var(&spinParams.SettleEpsilon, "settle-epsilon", defaults.SettleEpsilon, "snap distance once landing (0 = never snap)")
	rootCmd.Flags().IntVar(&tossFPS, "fps", defaultFPS, "animation frames per second")
	rootCmd.Flags().DurationVar(&tossRevealDelay, "reveal-delay", defaultRevealDelay, "delay before a fetched result is revealed")

	rootCmd.AddCommand(newFlipCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addTossFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&tossSource, "source", defaultSource, "outcome source (http, local)")
	cmd.Flags().StringVar(&tossURL, "url", outcome.DefaultURL, "flip server base URL")
	cmd.Flags().DurationVar(&tossTimeout, "timeout", defaultTimeout, "outcome request timeout")
}

func runTossCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyTossConfig(cmd, fileCfg.Toss)
	applyFloatConfig(cmd, "idle-rate", &spinParams.IdleRate, fileCfg.Spin.IdleRate)
	applyFloatConfig(cmd, "spin-rate", &spinParams.SpinRate, fileCfg.Spin.SpinRate)
	applyFloatConfig(cmd, "wobble-amplitude", &spinParams.WobbleAmplitude, fileCfg.Spin.WobbleAmplitude)
	applyFloatConfig(cmd, "wobble-frequency", &spinParams.WobbleFrequency, fileCfg.Spin.WobbleFrequency)
	applyFloatConfig(cmd, "landing-factor", &spinParams.LandingFactor, fileCfg.Spin.LandingFactor)
	applyFloatConfig(cmd, "wobble-damp", &spinParams.WobbleDamp, fileCfg.Spin.WobbleDamp)
	applyFloatConfig(cmd, "settle-epsilon", &spinParams.SettleEpsilon, fileCfg.Spin.SettleEpsilon)
	applyIntConfig(cmd, "fps", &tossFPS, fileCfg.Toss.FPS)
	applyDurationConfig(cmd, "reveal-delay", &tossRevealDelay, fileCfg.Toss.RevealDelay)
	applyLogConfig(cmd, fileCfg.Log)

	cfg := model.Config{
		Source:      tossSource,
		URL:         tossURL,
		Timeout:     tossTimeout,
		RevealDelay: tossRevealDelay,
		FPS:         tossFPS,
		Spin:        spinParams,
	}
	if err := validateConfig(cfg); err != nil {
		return err
	}

	source, err := outcome.NewSource(cfg.Source, cfg.URL, cfg.Timeout)
	if err != nil {
		return err
	}

	logger, closer, err := logging.OpenFile(config.DefaultLogPath(), logLevel, logFormat)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closer.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	logger.Info("starting coin", "source", source.Name(), "url", cfg.URL, "fps", cfg.FPS)
	program := tea.NewProgram(tui.NewModel(cfg, source, st, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newFlipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flip",
		Short: "Flip once without the TUI",
		Args:  cobra.NoArgs,
		RunE:  runFlipCmd,
	}
	addTossFlags(cmd)
	cmd.Flags().BoolVar(&flipJSON, "json", false, "print the recorded toss as JSON")
	return cmd
}

func runFlipCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyTossConfig(cmd, fileCfg.Toss)

	source, err := outcome.NewSource(tossSource, tossURL, tossTimeout)
	if err != nil {
		return err
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	toss, flipErr := flipOnce(cmd.Context(), source, tossTimeout)
	if err := st.InsertToss(context.Background(), toss); err != nil {
		logErrf("failed to save toss: %v\n", err)
	}
	if err := writeFlip(cmd.OutOrStdout(), toss, flipJSON); err != nil {
		return err
	}
	if flipErr != nil {
		return fmt.Errorf("flip failed: %w", flipErr)
	}
	return nil
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve coin flips over HTTP",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "addr", &serveAddr, fileCfg.Serve.Addr)
	applyLogConfig(cmd, fileCfg.Log)

	logger, err := logging.New(os.Stderr, logLevel, logFormat)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(outcome.DefaultRNG(), logger)
	if err := srv.Run(ctx, serveAddr); err != nil {
		return fmt.Errorf("flip server failed: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show toss history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySource, "source", "", "source filter (http, local)")
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N tosses")
	cmd.Flags().IntVar(&historyWindow, "window", defaultWindow, "moving average window for the heads share")
	cmd.Flags().StringVar(&historyFormat, "format", formatTUI, "output format (tui, text, json, yaml)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow <= 0 {
		return fmt.Errorf("--window must be > 0")
	}

	cfg := model.HistoryConfig{
		Source: historySource,
		Since:  sinceTime,
		Last:   historyLast,
		Window: historyWindow,
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore(st)

	if strings.ToLower(historyFormat) == formatTUI {
		program := tea.NewProgram(historyui.NewModel(st, cfg), tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("failed to run history TUI: %w", err)
		}
		return nil
	}
	return writeHistory(cmd.Context(), cmd.OutOrStdout(), st, cfg, historyFormat)
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		logErrln("Wrote default config to", path)
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func openStore() (*store.Store, error) {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return st, nil
}

func closeStore(st *store.Store) {
	if cerr := st.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
}

func applyTossConfig(cmd *cobra.Command, toss config.TossConfig) {
	applyStringConfig(cmd, "source", &tossSource, toss.Source)
	applyStringConfig(cmd, "url", &tossURL, toss.URL)
	applyDurationConfig(cmd, "timeout", &tossTimeout, toss.Timeout)
}

func applyLogConfig(cmd *cobra.Command, log config.LogConfig) {
	applyStringConfig(cmd, "log-level", &logLevel, log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, log.Format)
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = value.Duration
}

func defaultConfigTemplate() string {
	d := spin.DefaultParams()
	return fmt.Sprintf(`# tuicoin configuration
# Uncomment a value to enable it. CLI flags override config values.

[toss]
# source = %q            # Outcome source: http or local
# url = %q  # Flip server base URL
# timeout = %q              # Outcome request timeout
# reveal-delay = %q       # Delay before a fetched result is shown
# fps = %d                   # Animation frames per second

[spin]
# idle-rate = %g             # Idle rotation (rad/s)
# spin-rate = %g             # Rotation while tossing (rad/s)
# wobble-amplitude = %g   # Wobble amplitude while tossing (rad)
# wobble-frequency = %g      # Wobble frequency (rad/s)
# landing-factor = %g     # Per-frame landing interpolation factor (0-1]
# wobble-damp = %g        # Per-frame wobble damping factor (0-1]
# settle-epsilon = %g    # Snap distance once landing (0 = never snap)

[serve]
# addr = %q  # Listen address for tuicoin serve

[log]
# level = %q              # debug, info, warn, error
# format = %q             # text or json
`,
		defaultSource,
		outcome.DefaultURL,
		defaultTimeout.String(),
		defaultRevealDelay.String(),
		defaultFPS,
		d.IdleRate,
		d.SpinRate,
		d.WobbleAmplitude,
		d.WobbleFrequency,
		d.LandingFactor,
		d.WobbleDamp,
		d.SettleEpsilon,
		defaultAddr,
		defaultLogLevel,
		defaultLogFormat,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.FPS <= 0 {
		return fmt.Errorf("--fps must be > 0")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("--timeout must be >= 0")
	}
	if cfg.RevealDelay < 0 {
		return fmt.Errorf("--reveal-delay must be >= 0")
	}
	if err := cfg.Spin.Validate(); err != nil {
		return fmt.Errorf("invalid spin settings: %w", err)
	}
	if _, err := logging.ParseLevel(logLevel); err != nil {
		return err
	}
	return nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
