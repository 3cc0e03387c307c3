package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jward/groovyls"
	"github.com/jward/groovyls/internal/config"
	"github.com/jward/groovyls/internal/frontend"
	"github.com/jward/groovyls/internal/lsp"
	"github.com/jward/groovyls/internal/telemetry"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	flagDB       string
	flagFormat   string
	flagConfig   string
	flagLogLevel string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

// stdout receives command results; tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// shutdownTelemetry flushes the exporters installed by the root command.
var shutdownTelemetry = func(context.Context) error { return nil }

func main() {
	err := rootCmd.Execute()
	if serr := shutdownTelemetry(context.Background()); serr != nil {
		fmt.Fprintf(os.Stderr, "Error: telemetry: %s\n", serr)
	}
	if err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "groovyls",
	Short:         "Groovy language server",
	Long:          "groovyls compiles Groovy workspaces and answers editor queries over LSP. The index and query commands run the same analysis from the shell.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		return setupAmbient(cmd.Context())
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .groovyls/index.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "configuration file (default: .groovyls.yaml in the workspace root)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides the configuration)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}

// setupAmbient installs the stderr logger and the telemetry exporters named
// by the configuration of the current directory's workspace.
func setupAmbient(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting cwd: %w", err)
	}
	cfg, err := loadConfig(findRepoRoot(cwd))
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    lsp.Name,
		ServiceVersion: version,
		TraceExporter:  cfg.Telemetry.Traces,
		MetricExporter: cfg.Telemetry.Metrics,
	})
	if err != nil {
		return err
	}
	shutdownTelemetry = shutdown
	return nil
}

// loadConfig reads --config, or the workspace file of root, and applies the
// --log-level override.
func loadConfig(root string) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if flagConfig != "" {
		cfg, err = config.Load(flagConfig)
	} else {
		cfg, err = config.LoadWorkspace(root)
	}
	if err != nil {
		return cfg, err
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the Language Server Protocol on stdin and stdout",
	Long:  "Runs the language server until the client exits. The workspace comes from the client's initialize request; logs go to stderr.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	var opts []groovyls.Option
	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		if flagDB != "" {
			cfg.Database = flagDB
		}
		opts = append(opts, groovyls.WithConfig(cfg))
	}
	slog.Info("serving", slog.String("version", version))
	return lsp.New(version, opts...).RunStdio()
}

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Compile a workspace and write its symbol database",
	Long:  "Parses and resolves every Groovy source under the workspace root and writes symbols and type references to the SQLite database.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagForce, "force", false, "delete database and reindex from scratch")
}

func runIndex(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return err
	}
	repoRoot := findRepoRoot(targetDir)
	dbPath := resolveDBPath(repoRoot)

	if flagForce {
		if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing database for --force: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Cleared database: %s\n", dbPath)
	}

	openStart := time.Now()
	sess, err := newSession(repoRoot, dbPath)
	if err != nil {
		return err
	}
	defer sess.Close()
	openDuration := time.Since(openStart)

	compileStart := time.Now()
	res, err := sess.Compile(ctxOf(cmd))
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}
	compileDuration := time.Since(compileStart)

	errorsN, warningsN := countDiagnostics(res.Diagnostics)
	fmt.Fprintf(os.Stderr, "Indexed %s in %s (open: %s, compile: %s, mode: %s)\n",
		repoRoot,
		time.Since(start).Round(time.Millisecond),
		openDuration.Round(time.Millisecond),
		compileDuration.Round(time.Millisecond),
		res.Mode,
	)
	fmt.Fprintf(os.Stderr, "Files: %d, errors: %d, warnings: %d\n", res.Files, errorsN, warningsN)
	fmt.Fprintf(os.Stderr, "Database: %s\n", dbPath)
	return nil
}

// newSession opens a session on root that persists to dbPath.
func newSession(root, dbPath string) (*groovyls.Session, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	cfg.Database = dbPath
	sess, err := groovyls.New(groovyls.WithRoot(root), groovyls.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

func countDiagnostics(files []groovyls.FileDiagnostics) (errorsN, warningsN int) {
	for _, fd := range files {
		for _, d := range fd.Diagnostics {
			if d.Severity == frontend.SeverityError {
				errorsN++
			} else {
				warningsN++
			}
		}
	}
	return errorsN, warningsN
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resolveTargetDir returns the absolute path of the directory to index.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory or a
// .groovyls.yaml file. Returns startDir if neither is found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".groovyls", "index.db")
}
