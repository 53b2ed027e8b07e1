package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/tabloom-cli/internal/ai"
	"github.com/KaramelBytes/tabloom-cli/internal/apperr"
	cfgpkg "github.com/KaramelBytes/tabloom-cli/internal/config"
	"github.com/KaramelBytes/tabloom-cli/internal/logging"
	"github.com/KaramelBytes/tabloom-cli/internal/quota"
	"github.com/KaramelBytes/tabloom-cli/internal/session"
	"github.com/KaramelBytes/tabloom-cli/internal/table"
)

var (
	cfgFile            string
	debug              bool
	flagHTTPTimeoutSec int
	flagUser           string

	// Loaded configuration and logger
	cfg *cfgpkg.Global
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tabloom",
	Short: "TabLoom CLI: load, clean, analyze and export tabular data",
	Long: `TabLoom loads a CSV, XLSX or JSON dataset into a local working slot, applies
column transformations, derived columns and de-duplication, reports statistics,
insights and forecasts, and exports the result as CSV, JSON or XLSX.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "user id for quota accounting (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands that need config report it themselves.
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("user") && flagUser != "" {
		cfg.UserID = flagUser
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	log = logging.New(level, cfg.LogFormat)
	if cfg.ModelsFile != "" {
		m, err := ai.LoadCatalogFromJSON(cfg.ModelsFile)
		if err != nil {
			log.WithError(err).Warn("model catalog not loaded")
		} else {
			ai.MergeCatalog(m)
		}
	}
}

func requireConfig() (*cfgpkg.Global, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if log == nil {
		log = logging.New(cfg.LogLevel, cfg.LogFormat)
	}
	return cfg, nil
}

func httpTimeout(c *cfgpkg.Global) time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

func accountStore(c *cfgpkg.Global) *quota.FileStore {
	return quota.NewFileStore(c.AccountsPath(), quota.Options{
		FreeUploadLimit: c.FreeUploadLimit,
		PremiumDays:     c.PremiumDays,
		PaymentSecret:   c.PaymentKeySecret,
		Log:             log,
	})
}

func openSession() (*session.Session, error) {
	c, err := requireConfig()
	if err != nil {
		return nil, err
	}
	return session.New(c.UserID, accountStore(c), session.NewStore(c.SnapshotPath()), log), nil
}

// currentTable loads the working table from the snapshot slot.
func currentTable() (*session.Snapshot, error) {
	s, err := openSession()
	if err != nil {
		return nil, err
	}
	return s.Current()
}

// applyStep runs step on the working table and reports the new shape.
func applyStep(name string, step session.Step) (*table.Table, error) {
	s, err := openSession()
	if err != nil {
		return nil, err
	}
	snap, err := s.Apply(name, step)
	if err != nil {
		return nil, err
	}
	fmt.Printf("✓ %s: %d rows, %d columns\n", name, snap.Table.Len(), len(snap.Table.Columns))
	return snap.Table, nil
}

func newAssistant(c *cfgpkg.Global) (*ai.Assistant, error) {
	provider := c.AIProvider
	base := ""
	if provider == ai.ProviderOllama {
		base = c.OllamaHost
	}
	rt, err := ai.NewRuntime(provider, ai.RuntimeConfig{
		HTTPTimeout: httpTimeout(c),
		APIKey:      c.ProviderKey(),
		BaseURL:     base,
	})
	if err != nil {
		return nil, apperr.Validation("ai_provider", err.Error())
	}
	a := ai.NewAssistant(rt, provider, c.DefaultModel, log)
	if c.MaxTokens > 0 {
		a.MaxTokens = c.MaxTokens
	}
	a.Temperature = c.Temperature
	if c.SampleRows > 0 {
		a.SampleRows = c.SampleRows
	}
	if c.SuggestSampleRows > 0 {
		a.SuggestRows = c.SuggestSampleRows
	}
	return a, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// explain adds a hint for errors the user can act on.
func explain(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, session.ErrNoSnapshot) {
		return err
	}
	if hint := ai.Hint(err); hint != "" {
		return fmt.Errorf("%w\n  %s", err, hint)
	}
	return err
}
