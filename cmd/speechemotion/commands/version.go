package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/speechemotion/cmd/speechemotion/internal/build"
	"github.com/haivivi/speechemotion/pkg/cli"
)

var versionFormat string

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if versionFormat != "text" {
			format, err := cli.ParseFormat(versionFormat, cli.FormatYAML, cli.FormatJSON)
			if err != nil {
				return err
			}
			return cli.Output(build.Get(), cli.OutputOptions{Format: format})
		}

		fmt.Println(build.String())
		if IsVerbose() {
			fmt.Printf("  go:     %s\n", build.Get().Go)
			if cfg, err := GetConfig(); err == nil {
				fmt.Printf("  config: %s\n", cfg.Path)
			} else {
				fmt.Printf("  config: (unavailable: %v)\n", err)
			}
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().StringVarP(&versionFormat, "output", "o", "text", "output format: text, yaml, json")
	rootCmd.AddCommand(versionCmd)
}
