package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rustyeddy/tradepnl/config"
	"github.com/rustyeddy/tradepnl/internal/logger"
	"github.com/rustyeddy/tradepnl/internal/sourceobs"
	"github.com/rustyeddy/tradepnl/journal"
	"github.com/rustyeddy/tradepnl/kraken"
	"github.com/rustyeddy/tradepnl/ledger"
	"github.com/rustyeddy/tradepnl/pnl"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootOptions holds the persistent flags and what PersistentPreRunE builds
// from them.
type rootOptions struct {
	configPath string
	envFile    string
	source     string
	dbPath     string
	csvPath    string
	logLevel   string
	format     string

	cfg *config.Config
	log *zap.Logger
}

func NewRootCmd() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tradepnl",
		Short: "Realized and unrealized PnL from Kraken trade history",
		Long: `tradepnl pages through your Kraken trade history, matches sells against
buys first-in first-out, and marks open positions to the current market.

Trade history can come from the live API, a SQLite journal written by
"tradepnl fetch", or a Kraken CSV export.

Examples:
  tradepnl pnl
  tradepnl realized XXBTZUSD --matches
  tradepnl --source csv --csv trades.csv unrealized
  tradepnl journal day 2024-01-15`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&o.configPath, "config", "", "path to config file (optional)")
	pf.StringVar(&o.envFile, "env-file", "", "dotenv file with KRAKEN_API_KEY/KRAKEN_API_SECRET (default ./.env if present)")
	pf.StringVar(&o.source, "source", "kraken", "trade history source: kraken|sqlite|csv")
	pf.StringVar(&o.dbPath, "db", "./tradepnl.sqlite", "SQLite database read by --source sqlite and the journal command")
	pf.StringVar(&o.csvPath, "csv", "./trades.csv", "CSV trade export read by --source csv")
	pf.StringVar(&o.logLevel, "log-level", "info", "log level: debug|info|warn|error")
	pf.StringVar(&o.format, "format", "text", "output format: text|org")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return o.setup(cmd)
	}

	cmd.AddCommand(
		newPnLCmd(o),
		newRealizedCmd(o),
		newUnrealizedCmd(o),
		newFetchCmd(o),
		newJournalCmd(o),
		newConfigCmd(),
		newVersionCmd(),
	)

	return cmd
}

// Execute runs the root command and reports any error on stderr.
func Execute(ctx context.Context) error {
	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}
	return nil
}

func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.LoadFromFile(o.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	var envFiles []string
	if o.envFile != "" {
		envFiles = append(envFiles, o.envFile)
	}
	if err := cfg.ApplyEnv(envFiles...); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	// Source paths fall back to the journal's when not given.
	if !flags.Changed("db") && cfg.Journal.DBPath != "" {
		o.dbPath = cfg.Journal.DBPath
	}
	if !flags.Changed("csv") && cfg.Journal.CSVPath != "" {
		o.csvPath = cfg.Journal.CSVPath
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch o.format {
	case "text", "org":
	default:
		return fmt.Errorf("unknown --format %q (want text or org)", o.format)
	}

	log, err := logger.NewWithWriter(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.log = log
	return nil
}

func (o *rootOptions) krakenClient() (*kraken.Client, error) {
	ex := o.cfg.Exchange
	delay, err := ex.PageDelayDuration()
	if err != nil {
		return nil, err
	}
	timeout, err := ex.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return kraken.NewClient(kraken.Config{
		APIKey:    ex.APIKey,
		APISecret: ex.APISecret,
		BaseURL:   ex.BaseURL,
		Timeout:   timeout,
		PageDelay: delay,
	})
}

// calculator wires the selected history source and the ticker. The
// returned func releases the source.
func (o *rootOptions) calculator() (*pnl.Calculator, func(), error) {
	client, err := o.krakenClient()
	if err != nil {
		return nil, nil, err
	}

	var history ledger.TradeHistorySource
	release := func() {}

	switch o.source {
	case "kraken":
		history = client
	case "sqlite":
		store, err := journal.NewSQLite(o.dbPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open db: %w", err)
		}
		history = store
		release = func() { _ = store.Close() }
	case "csv":
		src, err := journal.LoadCSV(o.csvPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load csv: %w", err)
		}
		history = src
	default:
		return nil, nil, fmt.Errorf("unknown --source %q (want kraken, sqlite or csv)", o.source)
	}

	return &pnl.Calculator{
		History:     sourceobs.WrapHistory(history, o.log),
		Prices:      sourceobs.WrapPrices(client, o.log),
		Logger:      o.log,
		Concurrency: o.cfg.Report.Concurrency,
		MaxPages:    o.cfg.Exchange.MaxPages,
	}, release, nil
}

// buildLedger fetches the full history and keeps a copy in the configured
// journal. Returns the number of trades the journal had not seen.
func (o *rootOptions) buildLedger(ctx context.Context, calc *pnl.Calculator) (*ledger.Ledger, int, error) {
	l, err := calc.Ledger(ctx)
	if err != nil {
		return nil, 0, err
	}

	if l.Len() == 0 {
		return l, 0, nil
	}
	store, err := o.journalStore()
	if err != nil {
		return nil, 0, err
	}
	if store == nil {
		return l, 0, nil
	}
	defer store.Close()

	added, err := store.SaveLedger(ctx, l)
	if err != nil {
		return nil, 0, fmt.Errorf("save to journal: %w", err)
	}
	o.log.Info("journal updated",
		zap.String("journal", o.cfg.Journal.Type),
		zap.Int("new", added),
		zap.Int("trades", l.Len()))
	return l, added, nil
}

func (o *rootOptions) journalStore() (journal.Store, error) {
	switch o.cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(o.cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(o.cfg.Journal.CSVPath), nil
	default:
		return nil, nil
	}
}

// pairs returns the positional pairs, or the configured ones when none
// were given.
func (o *rootOptions) pairs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return o.cfg.Report.Pairs
}
