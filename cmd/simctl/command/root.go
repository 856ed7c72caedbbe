package command

// root.go defines the root command and the flags shared by every request
// subcommand.

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"simbridge/internal/client"
	"simbridge/internal/protocol"
)

const defaultAddr = "localhost:1234"

var (
	bridgeAddr string        // bridge host:port
	timeout    time.Duration // per request
)

var rootCmd = &cobra.Command{
	Use:   "simctl",
	Short: "simctl - send single requests to a simulation bridge",
	Long: `simctl connects to a running bridge, sends one request and prints the reply.
It can change the weather and time of day, create, remove and move actors,
query line of sight and run scripts on the simulation host.

Use "simctl command -h" to see the flags of each command.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultBridge := defaultAddr
	if v := os.Getenv("SIMCTL_ADDR"); v != "" {
		defaultBridge = v
	}
	rootCmd.PersistentFlags().StringVar(&bridgeAddr, "addr", defaultBridge, "bridge address (host:port)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Second, "dial and request timeout")

	rootCmd.AddCommand(weatherCmd)
	rootCmd.AddCommand(actorCmd)
	rootCmd.AddCommand(losCmd)
	rootCmd.AddCommand(scriptCmd)
}

// send performs one exchange and prints the reply. A GenericResult with
// Success=false is returned as an error so the exit status reflects it.
func send(cmd *cobra.Command, msg protocol.Message) error {
	c, err := client.Dial(bridgeAddr, timeout)
	if err != nil {
		return err
	}
	defer c.Close()

	reply, err := c.Call(msg)
	if err != nil {
		return err
	}
	return printReply(cmd.OutOrStdout(), reply)
}

func printReply(w io.Writer, reply protocol.Message) error {
	switch r := reply.(type) {
	case *protocol.GenericResult:
		if !r.Success {
			return fmt.Errorf("request failed: %s", r.Message)
		}
		fmt.Fprintf(w, "ok: %s\n", r.Message)
	case *protocol.LineOfSightResponse:
		if r.Visibility > 0 {
			fmt.Fprintln(w, "visible")
		} else {
			fmt.Fprintln(w, "blocked")
		}
	}
	return nil
}
