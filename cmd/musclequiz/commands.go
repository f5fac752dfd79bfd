package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/musclequiz/internal/catalog"
	"github.com/hrygo/musclequiz/internal/daily"
	"github.com/hrygo/musclequiz/internal/progress"
	"github.com/hrygo/musclequiz/internal/study"
	"github.com/hrygo/musclequiz/internal/timezone"
	"github.com/hrygo/musclequiz/internal/tracker"
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show the daily challenge entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.store.Close()

		loc := a.profile.Location()
		date, _ := cmd.Flags().GetString("date")
		reveal, _ := cmd.Flags().GetBool("reveal")

		key := daily.DateKey(time.Now(), loc)
		today := true
		if date != "" {
			if _, err := timezone.ParseDateKey(date, loc); err != nil {
				return errors.Wrapf(err, "invalid date %q", date)
			}
			today = date == key
			key = date
		}

		id, ok := daily.EntryIDForKey(key, a.catalog)
		if !ok {
			return errors.New("catalog is empty, no daily entry available")
		}
		cmd.Printf("Date: %s (%s)\n", key, loc)
		if reveal {
			entry, _ := a.catalog.Get(id)
			cmd.Printf("Entry: %s (%s)\n", entry.DisplayName, id)
		}
		if !today {
			return nil
		}

		persister := progress.NewPersister(progress.NewKVStore(a.store), a.logger, nil)
		rec, _ := tracker.New(persister).EnsureToday(cmd.Context(), loc, a.catalog, time.Now())
		status := "open"
		if rec.Completed {
			status = "finished"
		}
		cmd.Printf("Score: %d / %d (%s)\n", rec.Score, rec.Attempts, status)
		return nil
	},
}

var studyCmd = &cobra.Command{
	Use:   "study",
	Short: "Inspect and drive the study deck",
}

var studyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current study position",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(e *study.Engine, p study.Progress) study.Progress {
			return p
		})
	},
}

var studyNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance to the next study entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(e *study.Engine, p study.Progress) study.Progress {
			return e.Advance(cmd.Context(), p)
		})
	},
}

var studyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reshuffle the study deck",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withEngine(cmd, func(e *study.Engine, p study.Progress) study.Progress {
			return e.Reset(cmd.Context(), p.Settings.Region)
		})
	},
}

var studyRegionCmd = &cobra.Command{
	Use:   "region <region>",
	Short: "Switch the study deck region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		region, err := catalog.ParseRegion(args[0])
		if err != nil {
			return err
		}
		return withEngine(cmd, func(e *study.Engine, p study.Progress) study.Progress {
			return e.SetRegion(cmd.Context(), p, region)
		})
	},
}

// withEngine loads the deck, applies fn and prints the resulting position.
func withEngine(cmd *cobra.Command, fn func(*study.Engine, study.Progress) study.Progress) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.store.Close()

	persister := progress.NewPersister(progress.NewKVStore(a.store), a.logger, nil)
	engine := study.NewEngine(a.catalog, persister,
		study.WithDefaultRegion(catalog.Region(a.profile.DefaultRegion)),
		study.WithLogger(a.logger),
	)
	p := fn(engine, engine.Load(cmd.Context()))

	pos, total := p.Position()
	cmd.Printf("Region: %s\n", p.Settings.Region)
	switch p.State() {
	case study.StateEmpty:
		cmd.Println("No entries in this region.")
	case study.StateCompleted:
		cmd.Printf("Deck complete (%d entries).\n", total)
	default:
		id, _ := p.CurrentID()
		cmd.Printf("Entry %d / %d: %s\n", pos, total, id)
	}
	return nil
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List catalog entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.store.Close()

		region, _ := cmd.Flags().GetString("filter")
		r, err := catalog.ParseRegion(region)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tREGION")
		for _, e := range a.catalog.Entries() {
			if e.InRegion(r) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.DisplayName, e.EffectiveRegion())
			}
		}
		return w.Flush()
	},
}

func init() {
	dailyCmd.Flags().String("date", "", "date key YYYY-MM-DD (defaults to today in the configured timezone)")
	dailyCmd.Flags().Bool("reveal", false, "print the entry name")
	catalogCmd.Flags().String("filter", string(catalog.RegionAll), "only list entries in this region")
	studyCmd.AddCommand(studyShowCmd, studyNextCmd, studyResetCmd, studyRegionCmd)
}
