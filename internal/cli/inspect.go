package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GabrielNunesIT/loadplan/internal/adapters/loader"
	"github.com/GabrielNunesIT/loadplan/internal/generate"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var (
		inputFile string
		har       bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the operations found in an API description as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			kind := loader.KindAuto
			if har {
				kind = loader.KindHAR
			}
			spec, err := loader.ParseFile(inputFile, loader.Options{Kind: kind, HAR: cfg.HAR})
			if err != nil {
				return fmt.Errorf("failed to load API description: %w", err)
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(generate.Summarize(spec))
		},
	}

	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "Path to the OpenAPI, Swagger or HAR file (required)")
	cmd.Flags().BoolVar(&har, "har", false, "Treat the input as a HAR capture")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
