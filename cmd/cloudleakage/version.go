package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at release build time with -ldflags.
var (
	// Version is the release version.
	Version = "dev"

	// BuildDate is when the binary was built.
	BuildDate = "unknown"
)

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("cloudleakage %s (built %s, %s)\n", Version, BuildDate, runtime.Version())
	},
}

func init() {
	CloudLeakage.AddCommand(versionCommand)
}
