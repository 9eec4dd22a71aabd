// Package main provides the CLI entrypoint for typebest.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/typebest/internal/config"
	"github.com/verte-zerg/typebest/internal/funbox"
	"github.com/verte-zerg/typebest/internal/logging"
	"github.com/verte-zerg/typebest/internal/model"
	"github.com/verte-zerg/typebest/internal/pbui"
	"github.com/verte-zerg/typebest/internal/report"
	"github.com/verte-zerg/typebest/internal/resultfile"
	"github.com/verte-zerg/typebest/internal/store"
	"github.com/verte-zerg/typebest/internal/tracker"
)

const (
	defaultDriver       = "sqlite"
	defaultAddr         = ":8080"
	defaultLogLevel     = "info"
	defaultLogFormat    = "console"
	defaultHistoryLast  = 20
	defaultTrackLbBests = true
)

var (
	configPath   string
	dbDriver     string
	dbPath       string
	dbURL        string
	logLevel     string
	logFormat    string
	trackLbBests bool

	userID string

	submitFile   string
	submitFormat string

	pbsMode string

	historyLast int

	serveAddr string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "typebest",
		Short:         "Personal-best tracker for typing test results",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/typebest/config.toml)")
	flags.StringVar(&dbDriver, "db-driver", defaultDriver, "database driver: sqlite, postgres or mysql")
	flags.StringVar(&dbPath, "db-path", "", "sqlite database path")
	flags.StringVar(&dbURL, "db-url", "", "postgres or mysql connection url")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level")
	flags.StringVar(&logFormat, "log-format", defaultLogFormat, "log format: console or json")
	flags.BoolVar(&trackLbBests, "track-leaderboard", defaultTrackLbBests, "update leaderboard bests on submit")

	rootCmd.AddCommand(newSubmitCmd())
	rootCmd.AddCommand(newPbsCmd())
	rootCmd.AddCommand(newLeaderboardCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newFunboxCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds what every data command needs. close must be called once done.
type app struct {
	service *tracker.Service
	logger  *zap.Logger
	store   *store.Store
	fileCfg config.FileConfig
}

func (a *app) close() {
	if cerr := a.store.Close(); cerr != nil {
		logErrf("failed to close db: %v\n", cerr)
	}
	// Best-effort flush; stderr sync fails on some terminals.
	_ = a.logger.Sync()
}

func loadFileConfig(cmd *cobra.Command) (config.FileConfig, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(path)
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db-driver", &dbDriver, fileCfg.Store.Driver)
	applyStringConfig(cmd, "db-path", &dbPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "db-url", &dbURL, fileCfg.Store.URL)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-format", &logFormat, fileCfg.Log.Format)
	applyBoolConfig(cmd, "track-leaderboard", &trackLbBests, fileCfg.Leaderboard.Track)
	return fileCfg, nil
}

func funboxRegistry(fileCfg config.FileConfig) *funbox.Registry {
	return funbox.Default().WithOverrides(fileCfg.Funbox.CanGetPb)
}

func openApp(cmd *cobra.Command) (*app, error) {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(logLevel, logFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	path := dbPath
	if path == "" {
		path = config.DefaultDBPath()
	}
	st, err := store.Open(cmd.Context(), store.Options{Driver: dbDriver, Path: path, URL: dbURL})
	if err != nil {
		// Best-effort flush before bailing out.
		_ = logger.Sync()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	logger.Debug("store opened", zap.String("driver", st.Driver()))

	service := tracker.New(st,
		tracker.WithLogger(logger),
		tracker.WithFunboxes(funboxRegistry(fileCfg)),
		tracker.WithLeaderboardTracking(trackLbBests),
	)
	return &app{service: service, logger: logger, store: st, fileCfg: fileCfg}, nil
}

func requireUser(cmd *cobra.Command) {
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("user")
}

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit results and report new personal bests",
		Args:  cobra.NoArgs,
		RunE:  runSubmitCmd,
	}
	requireUser(cmd)
	cmd.Flags().StringVar(&submitFile, "file", "", "JSON or YAML result file (default: stdin)")
	cmd.Flags().StringVar(&submitFormat, "format", "", "input format: json or yaml (default: from file extension)")
	return cmd
}

func runSubmitCmd(cmd *cobra.Command, _ []string) error {
	results, err := readResults(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no results to submit")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	out := cmd.OutOrStdout()
	for i, result := range results {
		outcome, err := a.service.Submit(cmd.Context(), userID, result)
		if err != nil {
			return fmt.Errorf("failed to submit result %d: %w", i+1, err)
		}
		if err := report.RenderOutcome(out, result, outcome); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func readResults(stdin io.Reader) ([]model.Result, error) {
	format := resultfile.FormatJSON
	if submitFile != "" && submitFile != "-" {
		format = resultfile.FormatFromPath(submitFile)
	}
	if submitFormat != "" {
		parsed, err := resultfile.ParseFormat(submitFormat)
		if err != nil {
			return nil, err
		}
		format = parsed
	}

	if submitFile == "" || submitFile == "-" {
		return resultfile.Decode(stdin, format)
	}
	f, err := os.Open(submitFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open results: %w", err)
	}
	defer func() {
		// Best-effort close for read-only file.
		_ = f.Close()
	}()
	return resultfile.Decode(f, format)
}

func newPbsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pbs",
		Short: "Show personal bests",
		Args:  cobra.NoArgs,
		RunE:  runPbsCmd,
	}
	requireUser(cmd)
	cmd.Flags().StringVar(&pbsMode, "mode", "", "only show this mode")
	return cmd
}

func runPbsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	pbs, err := a.service.PersonalBests(cmd.Context(), userID)
	if err != nil {
		return err
	}
	if pbsMode != "" {
		pbs = model.PersonalBests{pbsMode: pbs[pbsMode]}
		if pbs[pbsMode] == nil {
			delete(pbs, pbsMode)
		}
	}
	return report.RenderPersonalBests(cmd.OutOrStdout(), pbs)
}

func newLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show leaderboard bests per language",
		Args:  cobra.NoArgs,
		RunE:  runLeaderboardCmd,
	}
	requireUser(cmd)
	return cmd
}

func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	lb, err := a.service.LeaderboardBests(cmd.Context(), userID)
	if err != nil {
		return err
	}
	return report.RenderLeaderboardBests(cmd.OutOrStdout(), lb)
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show submitted results",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	requireUser(cmd)
	cmd.Flags().IntVar(&historyLast, "last", defaultHistoryLast, "limit to last N results (0 for all)")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.service.History(cmd.Context(), userID, historyLast)
	if err != nil {
		return err
	}
	return report.RenderHistory(cmd.OutOrStdout(), records)
}

func newFunboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "funbox",
		Short: "List funboxes and whether they allow personal bests",
		Args:  cobra.NoArgs,
		RunE:  runFunboxCmd,
	}
}

func runFunboxCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := loadFileConfig(cmd)
	if err != nil {
		return err
	}
	return report.RenderFunboxes(cmd.OutOrStdout(), funboxRegistry(fileCfg).List())
}

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse personal bests interactively",
		Args:  cobra.NoArgs,
		RunE:  runBrowseCmd,
	}
	requireUser(cmd)
	return cmd
}

func runBrowseCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	pbs, err := a.service.PersonalBests(cmd.Context(), userID)
	if err != nil {
		return err
	}
	lb, err := a.service.LeaderboardBests(cmd.Context(), userID)
	if err != nil {
		return err
	}
	program := tea.NewProgram(pbui.NewModel(userID, pbs, lb), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run browser: %w", err)
	}
	return nil
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
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
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

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# typebest configuration
# Uncomment a value to enable it. CLI flags override config values.

[store]
# driver = %q             # sqlite, postgres or mysql
# path = ""               # sqlite file (default: $XDG_DATA_HOME/typebest/typebest.db)
# url = ""                # postgres or mysql connection url

[server]
# addr = %q

[log]
# level = %q
# format = %q        # console or json

[leaderboard]
# track = %t               # Update leaderboard bests on submit

[funbox.can-get-pb]
# nospace = true          # Override personal-best eligibility per funbox
`,
		defaultDriver,
		defaultAddr,
		defaultLogLevel,
		defaultLogFormat,
		defaultTrackLbBests,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
