package main

import (
	"fmt"
	"os"

	cmd "github.com/cloudleakage/cloudleakage/cmd/cloudleakage"
)

func main() {
	if err := cmd.CloudLeakage.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
