package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCommand = &cobra.Command{
	Use:   "sync <id>",
	Short: "Refresh the inventory and cost snapshot of an account",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cli := apiClient(cmd)

		ctx := signalContext(context.Background())

		res, err := cli.SyncAccount(ctx, args[0])
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Synced account %s: %d instances, %d cost records\n", res.AccountID, res.Instances, res.Costs)
	},
}

func init() {
	CloudLeakage.AddCommand(syncCommand)
}
