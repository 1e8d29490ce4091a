package cmd

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/seaswell/rollcall/internal/api"
	"github.com/seaswell/rollcall/internal/app"
	"github.com/seaswell/rollcall/internal/config"
	"github.com/seaswell/rollcall/internal/infrastructure/sqlite"
	"github.com/seaswell/rollcall/internal/log"
	"github.com/seaswell/rollcall/internal/tracing"
	"github.com/seaswell/rollcall/internal/ui/styles"
	"github.com/seaswell/rollcall/internal/validate"
)

func init() {
	// Force lipgloss/termenv to query the terminal background color
	// BEFORE any Bubble Tea program starts, so the OSC response does not
	// race with the input loop and leak into text fields.
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	serverURL string
	resumeID  string
	debugMode bool
	traceMode bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:     "rollcall",
	Short:   "A terminal ui for program registration",
	Long:    `A terminal user interface for registering into programs: pick a program, fill in its form, review fees, and pay.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/rollcall/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"write a debug log next to the config file")
	rootCmd.Flags().BoolVar(&traceMode, "trace", false,
		"trace backend calls even when tracing is off in the config")
	rootCmd.Flags().StringVarP(&serverURL, "server", "s", "",
		"registration server base URL")
	rootCmd.Flags().StringVar(&resumeID, "resume", "",
		"resume a saved draft by id (see 'rollcall drafts')")

	_ = viper.BindPFlag("server_url", rootCmd.Flags().Lookup("server"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("server_url", defaults.ServerURL)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.mouse_enabled", defaults.UI.MouseEnabled)
	viper.SetDefault("theme.mode", defaults.Theme.Mode)
	viper.SetDefault("theme.highlight", defaults.Theme.Highlight)
	viper.SetDefault("theme.subtle", defaults.Theme.Subtle)
	viper.SetDefault("theme.error", defaults.Theme.Error)
	viper.SetDefault("theme.success", defaults.Theme.Success)
	viper.SetDefault("drafts.enabled", defaults.Drafts.Enabled)
	viper.SetDefault("drafts.path", defaults.Drafts.Path)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigFile(config.DefaultConfigPath())
	}

	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) || isNotFound(err) {
			// First run: seed a commented default config and continue.
			if writeErr := config.WriteDefaultConfig(viper.ConfigFileUsed()); writeErr == nil {
				_ = viper.ReadInConfig()
			}
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func isNotFound(err error) bool {
	_, ok := err.(viper.ConfigFileNotFoundError)
	return ok
}

func runApp(cmd *cobra.Command, args []string) error {
	if debugMode {
		if cleanup, err := log.InitWithTeaLog("rollcall-debug.log", "rollcall"); err == nil {
			defer cleanup()
		}
	}

	styles.ApplyTheme(cfg.Theme.Highlight, cfg.Theme.Subtle, cfg.Theme.Error, cfg.Theme.Success)

	// "auto" resolves the markdown style from the terminal background.
	if cfg.UI.MarkdownStyle == "auto" {
		if termenv.HasDarkBackground() {
			cfg.UI.MarkdownStyle = "dark"
		} else {
			cfg.UI.MarkdownStyle = "light"
		}
	}

	if traceMode {
		cfg.Tracing.Enabled = true
	}
	if cfg.Tracing.Enabled && cfg.Tracing.Exporter == "file" && cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	client := api.NewClient(cfg.ServerURL, nil)
	engine := validate.NewEngine()

	var drafts *sqlite.DraftRepository
	if cfg.Drafts.Enabled {
		db, dbErr := sqlite.NewDB(cfg.Drafts.Path)
		if dbErr != nil {
			// The flow works without drafts; log and carry on.
			log.ErrorErr(log.CatDB, "Draft store unavailable", dbErr)
		} else {
			defer func() { _ = db.Close() }()
			drafts = db.DraftRepository()
		}
	}

	var model app.Model
	if resumeID != "" {
		if drafts == nil {
			return fmt.Errorf("cannot resume %q: draft persistence is disabled", resumeID)
		}
		draft, findErr := drafts.Find(resumeID)
		if findErr != nil {
			return fmt.Errorf("loading draft %q: %w", resumeID, findErr)
		}
		model = app.Resume(cfg, client, engine, drafts, draft)
	} else {
		model = app.New(cfg, client, engine, drafts)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
