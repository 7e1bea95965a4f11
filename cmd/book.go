package cmd

import (
	"fmt"
	"time"

	"github.com/example/salon-agenda/internal/booking"
	"github.com/example/salon-agenda/internal/schedule"
	"github.com/spf13/cobra"
)

func newBookCmd() *cobra.Command {
	var (
		date   string
		form   booking.Form
		noGrid bool
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Book one appointment without the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = schedule.Today(time.Now())
			}
			if !schedule.ValidDate(date) {
				return fmt.Errorf("invalid --date %q (want YYYY-MM-DD)", date)
			}

			ctx := cmd.Context()
			e, err := openEnv(ctx, true)
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			wf := booking.New(e.store, e.log)
			wf.OnCommitted = func(d string) {
				if noGrid {
					return
				}
				g := schedule.Project(e.store.All(), d, schedule.GenerateSlots(e.cfg.WorkingHours), e.cfg.Stylists)
				_ = renderAgenda(out, g)
			}

			if err := wf.Open(form.Time, form.Stylist); err != nil {
				return err
			}
			a, err := wf.Submit(ctx, date, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "booked id=%d %s %s %s: %s\n", a.ID, a.Date, a.Time, a.Stylist, a.Label())
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "", "day of the appointment, YYYY-MM-DD (defaults to today)")
	c.Flags().StringVar(&form.ClientName, "client", "", "client name")
	c.Flags().StringVar(&form.Service, "service", "", "service")
	c.Flags().StringVar(&form.Time, "time", "", "slot label, e.g. 10:00")
	c.Flags().StringVar(&form.Stylist, "stylist", "", "stylist")
	c.Flags().BoolVar(&noGrid, "no-grid", false, "do not print the day's agenda after booking")
	return c
}
