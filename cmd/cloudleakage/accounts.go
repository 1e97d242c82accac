package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cloudleakage/cloudleakage/api"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var accountsCommand = &cobra.Command{
	Use:   "accounts",
	Short: "Manage connected AWS accounts",
}

var accountsListCommand = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List connected accounts",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cli := apiClient(cmd)
		accounts, err := cli.Accounts(context.Background())
		if err != nil {
			fatal(err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tAWS ACCOUNT\tTYPE\tLAST SYNC")
		for _, acc := range accounts {
			sync := "never"
			if acc.LastSyncAt != nil {
				sync = acc.LastSyncAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", acc.ID, acc.Name, acc.AWSAccountID, acc.AccessType, sync)
		}
		if err := w.Flush(); err != nil {
			fatal(err)
		}
	},
}

var accountsAddCommand = &cobra.Command{
	Use:   "add",
	Short: "Connect an AWS account",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		req := &api.CreateAccountRequest{}
		req.Name = flagString(cmd, "name")
		req.AWSAccountID = flagString(cmd, "aws-account-id")
		req.AccessType = flagString(cmd, "type")
		req.AccessKeyID = flagString(cmd, "key-id")
		req.SecretAccessKey = flagString(cmd, "secret")
		req.RoleARN = flagString(cmd, "role-arn")
		req.Region = flagString(cmd, "region")

		faint := color.New(color.Faint).SprintFunc()
		reader := bufio.NewReader(os.Stdin)

		if req.Name == "" {
			fmt.Fprint(os.Stderr, faint("› ")+"Account name: ")
			name, _ := reader.ReadString('\n')
			req.Name = strings.TrimSuffix(name, "\n")
		}
		if req.AccessKeyID != "" && req.SecretAccessKey == "" {
			fmt.Fprint(os.Stderr, faint("› ")+"Secret access key: ")
			secret, _ := reader.ReadString('\n')
			req.SecretAccessKey = strings.TrimSuffix(secret, "\n")
		}

		cli := apiClient(cmd)
		acc, err := cli.CreateAccount(signalContext(context.Background()), req)
		if err != nil {
			fatal(err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("Connected account %s (%s)\n", green(acc.Name), acc.ID)
	},
}

var accountsRemoveCommand = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Disconnect an account",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cli := apiClient(cmd)
		if err := cli.DeleteAccount(context.Background(), args[0]); err != nil {
			fatal(err)
		}
		fmt.Printf("Account %s deleted\n", args[0])
	},
}

func init() {
	accountsAddCommand.Flags().String("name", "", "Display name for the account")
	accountsAddCommand.Flags().String("aws-account-id", "", "12 digit AWS account id")
	accountsAddCommand.Flags().String("type", "accesskey", "Access type: accesskey or iam")
	accountsAddCommand.Flags().String("key-id", "", "Access key id")
	accountsAddCommand.Flags().String("secret", "", "Secret access key. Prompted for if a key id is set without it")
	accountsAddCommand.Flags().String("role-arn", "", "IAM role to assume")
	accountsAddCommand.Flags().String("region", "", "Region the account's resources are in")

	accountsCommand.AddCommand(accountsListCommand)
	accountsCommand.AddCommand(accountsAddCommand)
	accountsCommand.AddCommand(accountsRemoveCommand)
	CloudLeakage.AddCommand(accountsCommand)
}

func flagString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(err)
	}
	return v
}
