package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-forecast/internal/service"
	"github.com/i474232898/weather-forecast/internal/weather"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <city>",
	Short: "Fetch and store observations for a date range",
	Long:  `Fetch observations from every configured source and upsert them. Without dates the last days ending today are fetched.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

var backfillCmd = &cobra.Command{
	Use:   "backfill <city>",
	Short: "Fetch only the days missing from the store",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackfill,
}

var citiesCmd = &cobra.Command{
	Use:   "cities",
	Short: "List cities with stored observations",
	Args:  cobra.NoArgs,
	RunE:  runCities,
}

var logCmd = &cobra.Command{
	Use:   "log [city]",
	Short: "Show the ingestion operation log",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLog,
}

var availabilityCmd = &cobra.Command{
	Use:   "availability <city>",
	Short: "Show stored extent and missing days of a city",
	Args:  cobra.ExactArgs(1),
	RunE:  runAvailability,
}

var (
	startFlag string
	endFlag   string
	limitFlag int
)

func init() {
	for _, c := range []*cobra.Command{ingestCmd, backfillCmd, availabilityCmd} {
		c.Flags().StringVar(&startFlag, "start", "", "first day (YYYY-MM-DD)")
		c.Flags().StringVar(&endFlag, "end", "", "last day (YYYY-MM-DD)")
	}
	logCmd.Flags().IntVar(&limitFlag, "limit", 20, "maximum number of entries")

	rootCmd.AddCommand(ingestCmd, backfillCmd, citiesCmd, logCmd, availabilityCmd)
}

func dateFlags() (start, end *time.Time, err error) {
	parse := func(name, v string) (*time.Time, error) {
		if v == "" {
			return nil, nil
		}
		d, err := weather.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", name, err)
		}
		return &d, nil
	}
	if start, err = parse("start", startFlag); err != nil {
		return nil, nil, err
	}
	if end, err = parse("end", endFlag); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	start, end, err := dateFlags()
	if err != nil {
		return err
	}
	res, err := serviceFrom(cmd).Ingest(cmd.Context(), args[0], start, end)
	printIngest(res)
	return err
}

func runBackfill(cmd *cobra.Command, args []string) error {
	start, end, err := dateFlags()
	if err != nil {
		return err
	}
	res, err := serviceFrom(cmd).Backfill(cmd.Context(), args[0], start, end)
	printIngest(res)
	return err
}

func printIngest(res service.IngestResult) {
	if res.ID == "" {
		return
	}
	fmt.Printf("%s %s..%s: %s (%s)\n", res.City,
		res.Start.Format(weather.DateLayout), res.End.Format(weather.DateLayout),
		res.Status, res.Message)
}

func runCities(cmd *cobra.Command, args []string) error {
	cities, err := serviceFrom(cmd).ListCities(cmd.Context())
	if err != nil {
		return err
	}
	if len(cities) == 0 {
		fmt.Println("No cities stored.")
		return nil
	}
	for _, c := range cities {
		fmt.Println(c)
	}
	return nil
}

func runLog(cmd *cobra.Command, args []string) error {
	city := ""
	if len(args) == 1 {
		city = args[0]
	}
	entries, err := serviceFrom(cmd).GetOperationLog(cmd.Context(), city, limitFlag)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tCITY\tRANGE\tSTATUS\tMESSAGE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s..%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.City,
			e.RequestedStart.Format(weather.DateLayout), e.RequestedEnd.Format(weather.DateLayout),
			e.Status, e.Message)
	}
	return w.Flush()
}

func runAvailability(cmd *cobra.Command, args []string) error {
	start, end, err := dateFlags()
	if err != nil {
		return err
	}
	av, err := serviceFrom(cmd).GetAvailability(cmd.Context(), args[0], start, end)
	if err != nil {
		return err
	}
	if !av.Available {
		fmt.Printf("%s: no observations stored\n", av.City)
		return nil
	}

	fmt.Printf("%s: %d days stored, %s..%s\n", av.City, av.Count,
		av.MinDate.Format(weather.DateLayout), av.MaxDate.Format(weather.DateLayout))
	if len(av.MissingDates) == 0 {
		fmt.Println("No missing days.")
		return nil
	}
	for _, run := range weather.Runs(av.MissingDates) {
		fmt.Printf("missing %s..%s\n", run.Start.Format(weather.DateLayout), run.End.Format(weather.DateLayout))
	}
	return nil
}
