package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var policyCommand = &cobra.Command{
	Use:   "policy",
	Short: "Print the IAM policy required for read access",
	Long: `Policy prints an IAM policy document granting the read only
permissions needed to sync an account. Attach it to the user or role the
account is connected with.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cli := apiClient(cmd)
		doc, err := cli.Policy(context.Background())
		if err != nil {
			fatal(err)
		}
		fmt.Println(doc)
	},
}

func init() {
	CloudLeakage.AddCommand(policyCommand)
}
