package main

import (
	"context"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/robby/adminctl/internal/api"
	"github.com/robby/adminctl/internal/auth"
	"github.com/robby/adminctl/internal/config"
	"github.com/robby/adminctl/internal/eventbus"
	"github.com/robby/adminctl/internal/logging"
	"github.com/robby/adminctl/internal/store"
	"github.com/robby/adminctl/internal/tui"
)

var (
	// CLI flags
	apiURLFlag   string
	envFileFlag  string
	logLevelFlag string
	logFileFlag  string
	pageSizeFlag int
	emailFlag    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "adminctl",
		Short: "Terminal console for the admin API",
		Long: `adminctl is a terminal console for the admin API.

Browse, create and delete departments, roles and members, and chart row
counts per resource.

Configuration is read from the environment, .env and .env.local:
  ADMIN_API_URL    API base URL (default http://localhost:3000/)
  ADMIN_WEB_URL    web console used by the edit action
  ADMIN_EMAIL      sign in automatically, together with ADMIN_PASSWORD
  PAGE_SIZE        rows per page
  LOG_LEVEL, LOG_FILE, LOG_FORMAT`,
		SilenceUsage: true,
		RunE:         run,
	}

	// Define CLI flags
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Admin API base URL. Overrides ADMIN_API_URL.")
	rootCmd.PersistentFlags().StringVar(&envFileFlag, "env-file", "", "Load this env file instead of .env and .env.local.")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error). Overrides LOG_LEVEL.")
	rootCmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Log file, '-' for stderr. Overrides LOG_FILE.")
	rootCmd.PersistentFlags().StringVar(&emailFlag, "email", "", "Sign-in email. Overrides ADMIN_EMAIL.")
	rootCmd.Flags().IntVar(&pageSizeFlag, "page-size", 0, "Rows per page. Overrides PAGE_SIZE.")

	rootCmd.AddCommand(newListCmd(), newNavCmd(), newWhoamiCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env bundles what every command needs.
type env struct {
	cfg    *config.Config
	log    *logrus.Logger
	closer io.Closer
	client *api.Client
}

// setup loads the configuration, applies flag overrides and builds the
// logger and API client. Logs go to logFallback when no log file is configured.
func setup(logFallback io.Writer) (*env, error) {
	files := config.DefaultEnvFiles
	if envFileFlag != "" {
		files = []string{envFileFlag}
	}
	cfg, err := config.Parse(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	if logFileFlag != "" {
		cfg.Log.File = logFileFlag
	}
	if pageSizeFlag != 0 {
		cfg.PageSize = pageSizeFlag
	}
	if emailFlag != "" {
		cfg.Email = emailFlag
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, closer, err := logging.New(cfg.Log, logFallback)
	if err != nil {
		return nil, err
	}

	client, err := api.New(cfg.APIURL, log)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	return &env{cfg: cfg, log: log, closer: closer, client: client}, nil
}

func run(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI, so logs never fall back to stderr here
	e, err := setup(io.Discard)
	if err != nil {
		return err
	}
	defer e.closer.Close()

	// Create context
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Configured credentials sign in before the UI starts; otherwise the
	// login page is shown.
	creds := auth.Credentials{Email: e.cfg.Email, Password: e.cfg.Password}
	if creds.Valid() {
		svc := auth.NewService(e.client, e.log)
		if err := svc.Ensure(ctx, &auth.StaticProvider{Credentials: creds}); err != nil {
			e.log.WithError(err).Warn("automatic sign in failed")
		}
	}

	bus := eventbus.New(e.log)
	app := tui.NewAppModel(ctx, tui.AppDeps{
		Backend:   e.client,
		Store:     store.New(e.client, e.log),
		Bus:       bus,
		Log:       e.log,
		PageSize:  e.cfg.PageSize,
		RecordURL: e.cfg.RecordURL,
	})

	e.log.WithField("api_url", e.cfg.APIURL).Info("starting console")

	// Run Bubble Tea program
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}

	return nil
}
