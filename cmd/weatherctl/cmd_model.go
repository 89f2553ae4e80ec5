package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-forecast/internal/weather"
)

var trainCmd = &cobra.Command{
	Use:   "train <city>",
	Short: "Train the forecast model of a city",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrain,
}

var forecastCmd = &cobra.Command{
	Use:   "forecast <city>",
	Short: "Forecast the days after the latest observation",
	Long:  `Forecast temperature, humidity, precipitation and condition. The model is trained first if the city has none.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runForecast,
}

var daysFlag int

func init() {
	forecastCmd.Flags().IntVar(&daysFlag, "days", 5, "number of days to forecast")
	rootCmd.AddCommand(trainCmd, forecastCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	res, err := serviceFrom(cmd).Train(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Trained %s on %d observations at %s\n", res.City, res.Rows, res.TrainedAt.Format("2006-01-02 15:04:05"))
	keys := make([]string, 0, len(res.Metrics))
	for k := range res.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-14s %.3f\n", k, res.Metrics[k])
	}
	return nil
}

func runForecast(cmd *cobra.Command, args []string) error {
	points, err := serviceFrom(cmd).GetForecast(cmd.Context(), args[0], daysFlag)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTEMP\tHUMIDITY\tPRECIP\tCONDITION")
	for _, p := range points {
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%s\n",
			p.Date.Format(weather.DateLayout), p.Temperature, p.Humidity, p.Precipitation, p.Condition)
	}
	return w.Flush()
}
