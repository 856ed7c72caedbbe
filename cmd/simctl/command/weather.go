package command

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"simbridge/internal/protocol"
)

var (
	weatherDuration time.Duration
	fogColor        string
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Change weather and time of day",
}

var overcastCmd = &cobra.Command{
	Use:   "overcast <0..1>",
	Short: "Set cloud cover from a fraction (0 clear, 1 thunderstorm)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid overcast value: %w", err)
		}
		return send(cmd, &protocol.OvercastChange{
			State:    protocol.CloudStateFromValue(v),
			Duration: weatherDuration,
		})
	},
}

var fogCmd = &cobra.Command{
	Use:   "fog <density 0..1>",
	Short: "Set fog density",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		density, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid fog density: %w", err)
		}
		color, err := parseVector(fogColor)
		if err != nil {
			return err
		}
		return send(cmd, &protocol.FogChange{
			Density:  density,
			Duration: weatherDuration,
			ColorRGB: color,
		})
	},
}

var rainCmd = &cobra.Command{
	Use:   "rain <intensity 0..1>",
	Short: "Set rain intensity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		intensity, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid rain intensity: %w", err)
		}
		return send(cmd, &protocol.RainChange{
			Intensity: intensity,
			Duration:  weatherDuration,
		})
	},
}

var timeCmd = &cobra.Command{
	Use:   "time <HH:MM[:SS]>",
	Short: "Set the simulation clock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		past, err := parseClock(args[0])
		if err != nil {
			return err
		}
		return send(cmd, &protocol.TimeOfDayChange{TimePastMidnight: past})
	},
}

func init() {
	weatherCmd.PersistentFlags().DurationVar(&weatherDuration, "over", 0, "transition time")
	fogCmd.Flags().StringVar(&fogColor, "color", "0,0,0", "fog color as r,g,b")

	weatherCmd.AddCommand(overcastCmd)
	weatherCmd.AddCommand(fogCmd)
	weatherCmd.AddCommand(rainCmd)
	weatherCmd.AddCommand(timeCmd)
}
