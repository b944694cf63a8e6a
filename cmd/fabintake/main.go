// Command fabintake serves fabrication request forms over HTTP and offers a
// few offline helpers around the same validation rules.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fabintake: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fabintake",
		Short: "Fabrication project intake service",
		Long: `fabintake accepts project files for 3D printers, laser cutters and PCB printers,
checks them against per-device rules and hands finished batches to the submission backend.`,
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newServeCmd(),
		newRulesCmd(),
		newCheckCmd(),
	)
	return cmd
}
