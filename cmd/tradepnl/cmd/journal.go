package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/tradepnl/journal"
	"github.com/spf13/cobra"
)

func newJournalCmd(o *rootOptions) *cobra.Command {
	var utc bool

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Query the SQLite trade journal",
		Long: `Query and display trades saved by "tradepnl fetch" in the SQLite journal
(--db, or journal.db_path from the config).

Subcommands:
  trade  - Show a stored trade by ID
  today  - List trades executed today
  day    - List trades executed on a specific day
  count  - Count stored trades

Examples:
  tradepnl journal trade TXID-1
  tradepnl journal today
  tradepnl journal day 2024-01-15 --utc`,
	}

	cmd.PersistentFlags().BoolVar(&utc, "utc", false, "use UTC day boundaries instead of local time")
	loc := func() *time.Location {
		if utc {
			return time.UTC
		}
		return time.Local
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "trade <trade-id>",
			Short: "Show a stored trade",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				j, err := o.openJournal()
				if err != nil {
					return err
				}
				defer j.Close()

				t, err := j.GetTrade(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("get trade: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
				return nil
			},
		},
		&cobra.Command{
			Use:   "today",
			Short: "List trades executed today",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				l := loc()
				return o.listDay(cmd, l, time.Now().In(l).Format(dayLayout))
			},
		},
		&cobra.Command{
			Use:   "day <YYYY-MM-DD>",
			Short: "List trades executed on a specific day",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return o.listDay(cmd, loc(), args[0])
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Count stored trades",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				j, err := o.openJournal()
				if err != nil {
					return err
				}
				defer j.Close()

				n, err := j.CountTrades(cmd.Context())
				if err != nil {
					return fmt.Errorf("count trades: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s holds %d trades.\n", o.dbPath, n)
				return nil
			},
		},
	)
	return cmd
}

const dayLayout = "2006-01-02"

func (o *rootOptions) openJournal() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(o.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func (o *rootOptions) listDay(cmd *cobra.Command, loc *time.Location, day string) error {
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	j, err := o.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	trades, err := j.ListTradesBetween(cmd.Context(), start, end)
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), journal.FormatTradesOrg(trades))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation(dayLayout, day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1), nil
}
