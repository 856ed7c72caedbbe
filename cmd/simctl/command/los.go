package command

import (
	"errors"

	"github.com/spf13/cobra"

	"simbridge/internal/protocol"
)

var (
	losObserverID string
	losTarget     string
)

var losCmd = &cobra.Command{
	Use:   "los [observer-marking]",
	Short: "Check line of sight from an observer to a point",
	Long: `Check whether the observer can see the target point. The observer is named
either by marking or by --id site:application:entity; the id wins when both
are given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &protocol.LineOfSightRequest{}
		if len(args) == 1 {
			req.EntityMarking = args[0]
		}
		if losObserverID != "" {
			id, err := parseEntityID(losObserverID)
			if err != nil {
				return err
			}
			req.EntityID = id
		}
		if req.EntityMarking == "" && req.EntityID.IsZero() {
			return errors.New("an observer marking or --id is required")
		}
		target, err := parseVector(losTarget)
		if err != nil {
			return err
		}
		req.Location = target
		return send(cmd, req)
	},
}

func init() {
	losCmd.Flags().StringVar(&losObserverID, "id", "", "observer id as site:application:entity")
	losCmd.Flags().StringVar(&losTarget, "to", "0,0,0", "target point as x,y,z")
}
