package cmd

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/cloudleakage/cloudleakage/analysis"
	"github.com/cloudleakage/cloudleakage/graph"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/suggest"
	"github.com/cloudleakage/cloudleakage/tfstate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var analyzeFormats = []string{"json", "dot"}

var analyzeCommand = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a Terraform state file",
	Long: `Analyze parses a Terraform state file and prints the resource
dependency graph. The analysis runs locally, no server is required.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			panic(err)
		}
		output, err := cmd.Flags().GetString("output")
		if err != nil {
			panic(err)
		}

		src, err := ioutil.ReadFile(args[0])
		if err != nil {
			fatal(err)
		}

		out, err := runAnalyze(src, format)
		if err != nil {
			fatal(err)
		}

		if output == "" || output == "-" {
			fmt.Println(string(out))
			return
		}
		if err := ioutil.WriteFile(output, out, 0644); err != nil {
			fatal(err)
		}
	},
}

func init() {
	analyzeCommand.Flags().StringP("format", "f", "json", "Output format: json or dot")
	analyzeCommand.Flags().StringP("output", "o", "", "Write output to file instead of stdout")

	CloudLeakage.AddCommand(analyzeCommand)
}

func runAnalyze(src []byte, format string) ([]byte, error) {
	switch format {
	case "json":
		a := &analysis.Analyzer{}
		payload, err := a.Analyze(src)
		if err != nil {
			return nil, err
		}
		return json.MarshalIndent(payload, "", "  ")
	case "dot":
		doc, err := tfstate.Read(src)
		if err != nil {
			return nil, err
		}
		resources, table, err := analysis.Normalize(doc)
		if err != nil {
			return nil, err
		}
		edges, _, err := analysis.Resolve(resources, table, analysis.DefaultMaxDepth)
		if err != nil {
			return nil, err
		}
		return export.DOT(graph.Build(resources, edges))
	default:
		if s := suggest.String(format, analyzeFormats); s != "" {
			return nil, errors.Errorf("unsupported format %q, did you mean %q?", format, s)
		}
		return nil, errors.Errorf("unsupported format %q, must be one of: json, dot", format)
	}
}
