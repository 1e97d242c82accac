package cmd

import (
	"fmt"
	"os"

	"github.com/cloudleakage/cloudleakage/api/httpapi"
	"github.com/spf13/cobra"
)

// DefaultEndpoint is the server endpoint used when neither the flag nor the
// environment variable is set. Can be overridden in build using -ldflags.
var DefaultEndpoint = "http://127.0.0.1:8080"

// CloudLeakage is the root command for the cli.
var CloudLeakage = &cobra.Command{
	Use:           "cloudleakage",
	Short:         "Analyze Terraform state and find leaking AWS spend",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	CloudLeakage.PersistentFlags().String("endpoint", "", "Server endpoint. Env var: CLOUDLEAKAGE_ENDPOINT")
}

// apiClient builds a client for the server endpoint. The endpoint is
// resolved from the flag, the environment or the built in default, in that
// order.
func apiClient(cmd *cobra.Command) *httpapi.Client {
	addr, err := cmd.Flags().GetString("endpoint")
	if err != nil {
		panic(err)
	}
	if addr == "" {
		addr = os.Getenv("CLOUDLEAKAGE_ENDPOINT")
	}
	if addr == "" {
		addr = DefaultEndpoint
	}
	return &httpapi.Client{Endpoint: addr}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
