package command

import (
	"github.com/spf13/cobra"

	"simbridge/internal/protocol"
)

var scriptExecutor string

var scriptCmd = &cobra.Command{
	Use:   "script <text>",
	Short: "Run a script on the simulation host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return send(cmd, &protocol.RunScript{
			ScriptText:      args[0],
			ExecutorMarking: scriptExecutor,
		})
	},
}

func init() {
	scriptCmd.Flags().StringVar(&scriptExecutor, "executor", "", "marking of the executing entity")
}
