package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/example/salon-agenda/internal/config"
	"github.com/example/salon-agenda/internal/schedule"
	"github.com/spf13/cobra"
)

func newSlotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Print the time axis for the configured working hours",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range schedule.GenerateSlots(cfg.WorkingHours) {
				fmt.Fprintln(out, s)
			}
			return nil
		},
	}
}

func newAgendaCmd() *cobra.Command {
	var (
		date   string
		asJSON bool
	)

	c := &cobra.Command{
		Use:   "agenda",
		Short: "Print one day's agenda grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = schedule.Today(time.Now())
			}
			if !schedule.ValidDate(date) {
				return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", date)
			}

			e, err := openEnv(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			g := schedule.Project(e.store.All(), date, schedule.GenerateSlots(e.cfg.WorkingHours), e.cfg.Stylists)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(g)
			}
			return renderAgenda(cmd.OutOrStdout(), g)
		},
	}

	c.Flags().StringVar(&date, "date", "", "day to show, YYYY-MM-DD (defaults to today)")
	c.Flags().BoolVar(&asJSON, "json", false, "print the grid as JSON")
	return c
}

// renderAgenda writes the grid as an aligned text table, one row per slot.
func renderAgenda(w io.Writer, g schedule.Grid) error {
	fmt.Fprintf(w, "Agenda para %s\n", g.Date)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Hora\t%s\t\n", strings.Join(g.Stylists, "\t"))
	for _, row := range g.Rows {
		cols := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cols = append(cols, cellText(c))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", row.Time, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

func cellText(c schedule.Cell) string {
	if c.Empty() {
		return "-"
	}
	parts := make([]string, 0, len(c.Appointments))
	for _, a := range c.Appointments {
		parts = append(parts, fmt.Sprintf("%s [%s]", a.Label(), a.Category))
	}
	return strings.Join(parts, "; ")
}
