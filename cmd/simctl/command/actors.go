package command

import (
	"github.com/spf13/cobra"

	"simbridge/internal/protocol"
)

var (
	actorSide     string
	actorLocation string
	actorHeading  float64
)

var actorCmd = &cobra.Command{
	Use:   "actor",
	Short: "Create, remove and move actors",
}

var actorCreateCmd = &cobra.Command{
	Use:   "create <type>",
	Short: "Create an actor of the given type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		side, err := parseSide(actorSide)
		if err != nil {
			return err
		}
		loc, err := parseVector(actorLocation)
		if err != nil {
			return err
		}
		return send(cmd, &protocol.CreateActor{Type: args[0], Side: side, Location: loc})
	},
}

var actorRemoveCmd = &cobra.Command{
	Use:   "remove <marking>...",
	Short: "Remove actors by marking",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return send(cmd, &protocol.RemoveActors{EntityMarkings: args})
	},
}

var actorTeleportCmd = &cobra.Command{
	Use:   "teleport <marking>",
	Short: "Move an actor to a new location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := parseVector(actorLocation)
		if err != nil {
			return err
		}
		return send(cmd, &protocol.TeleportEntity{
			EntityMarking: args[0],
			Location:      loc,
			Heading:       actorHeading,
		})
	},
}

func init() {
	actorCreateCmd.Flags().StringVar(&actorSide, "side", "civilian", "civilian, friendly or enemy")
	actorCmd.PersistentFlags().StringVar(&actorLocation, "at", "0,0,0", "location as x,y,z")
	actorTeleportCmd.Flags().Float64Var(&actorHeading, "heading", 0, "heading in degrees")

	actorCmd.AddCommand(actorCreateCmd)
	actorCmd.AddCommand(actorRemoveCmd)
	actorCmd.AddCommand(actorTeleportCmd)
}
