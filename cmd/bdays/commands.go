package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/bdays/internal/registry"
	"github.com/username/bdays/pkg/calendar"
	"github.com/username/bdays/pkg/dateutil"
	"github.com/username/bdays/pkg/easter"
)

func parseDates(args []string) ([]dateutil.Date, error) {
	dates := make([]dateutil.Date, len(args))
	for i, arg := range args {
		d, err := dateutil.Parse(arg)
		if err != nil {
			return nil, err
		}
		dates[i] = d
	}
	return dates, nil
}

func isCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "is <date>...",
		Short: "Show whether dates are holidays or business days",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDates(args)
			if err != nil {
				return err
			}
			h, err := loadHolidays()
			if err != nil {
				return err
			}
			cal := calendar.New(h)
			namer, _ := h.(calendar.HolidayNamer)

			for _, d := range dates {
				holiday, err := cal.IsHoliday(d)
				if err != nil {
					return err
				}

				status := "business day"
				switch {
				case holiday:
					status = "holiday"
					if namer != nil {
						if name := namer.HolidayName(d); name != "" {
							status += " (" + name + ")"
						}
					}
				case d.IsWeekend():
					status = "weekend"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%v %-9s %s\n", d, d.Weekday(), status)
			}
			return nil
		},
	}
}

func adjustCmd() *cobra.Command {
	var backward bool

	cmd := &cobra.Command{
		Use:   "adjust <date>",
		Short: "Move a date to the nearest business day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dateutil.Parse(args[0])
			if err != nil {
				return err
			}
			cal, err := loadCalendar()
			if err != nil {
				return err
			}

			adjusted, err := cal.ToBusinessDay(d, !backward)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), adjusted)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&backward, "backward", "b", false, "Adjust to the previous business day")
	return cmd
}

func advanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "advance <date> <n>",
		Short: "Move n business days from a date (negative n moves backwards)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dateutil.Parse(args[0])
			if err != nil {
				return err
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid number of business days %q: %w", args[1], err)
			}
			cal, err := loadCalendar()
			if err != nil {
				return err
			}

			result, err := cal.AdvanceBusinessDays(d, n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result)
			return nil
		},
	}
}

func betweenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "between <from> <to>",
		Short: "Count business days from one date to another",
		Long: "Counts business days from <from> to <to>. Both dates are first moved\n" +
			"forward to a business day; the result is negative when <to> is earlier.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDates(args)
			if err != nil {
				return err
			}
			cal, err := loadCalendar()
			if err != nil {
				return err
			}

			n, err := cal.BusinessDaysBetween(dates[0], dates[1])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count <from> <to>",
		Short: "Count business days in a closed date range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDates(args)
			if err != nil {
				return err
			}
			from, to := dates[0], dates[1]

			cal, err := loadCalendar()
			if err != nil {
				return err
			}
			cache, ok := cal.(*calendar.Cache)
			if !ok {
				// Precompute just the requested range.
				cache, err = calendar.NewCache(cal, from, to, calendar.WithLogger(logger))
				if err != nil {
					return err
				}
			}

			n, err := cache.CountBusinessDays(from, to)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func easterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "easter <year>...",
		Short: "Print the date of Easter Sunday",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, arg := range args {
				year, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid year %q: %w", arg, err)
				}
				d, err := easter.Date(year)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}

// holidayRow is one line of `holidays --format csv`.
type holidayRow struct {
	Date    string `csv:"date"`
	Weekday string `csv:"weekday"`
	Name    string `csv:"name"`
}

func holidaysCmd() *cobra.Command {
	var (
		weekends bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "holidays <year>",
		Short: "List the holidays of a year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q: %w", args[0], err)
			}
			if format != "text" && format != "csv" {
				return fmt.Errorf("unknown format %q (must be text or csv)", format)
			}
			h, err := loadHolidays()
			if err != nil {
				return err
			}
			namer, _ := h.(calendar.HolidayNamer)

			var rows []*holidayRow
			for d := dateutil.Of(year, time.January, 1); d.Year() == year; d = dateutil.Step(d, true) {
				if d.IsWeekend() && !weekends {
					continue
				}
				holiday, err := h.IsHoliday(d)
				if err != nil {
					return err
				}
				if !holiday {
					continue
				}

				row := &holidayRow{Date: d.String(), Weekday: d.Weekday().String()}
				if namer != nil {
					row.Name = namer.HolidayName(d)
				}
				rows = append(rows, row)
			}

			logger.Debug("Listed holidays",
				zap.String("calendar", cfg.Calendar.Name),
				zap.Int("year", year),
				zap.Int("holidays", len(rows)))

			if format == "csv" {
				return gocsv.Marshal(rows, cmd.OutOrStdout())
			}
			for _, row := range rows {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-9s %s\n", row.Date, row.Weekday, row.Name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&weekends, "weekends", false, "Include holidays falling on a weekend")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or csv")
	return cmd
}

func calendarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendars",
		Short: "List the available calendars",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range registry.New(logger).Names() {
				marker := " "
				if name == cfg.Calendar.Name {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
			return nil
		},
	}
}
