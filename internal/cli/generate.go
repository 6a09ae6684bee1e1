package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/loadplan/internal/adapters/converters"
	"github.com/GabrielNunesIT/loadplan/internal/adapters/loader"
	"github.com/GabrielNunesIT/loadplan/internal/domain"
	"github.com/GabrielNunesIT/loadplan/internal/generate"
)

type generateFlags struct {
	inputFile  string
	outputFile string
	format     string
	har        bool
	baseURL    string
	prompt     string

	planName      string
	threads       int
	rampUp        int
	loops         int
	groupBy       string
	csvDataSet    bool
	noAssertions  bool
	noCorrelation bool
}

func (c *CLI) generateCommand() *cobra.Command {
	f := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a JMeter plan, CSV test cases or a report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runGenerate(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.inputFile, "input", "i", "", "Path to the OpenAPI, Swagger or HAR file (required)")
	flags.StringVarP(&f.outputFile, "output", "o", "", "Path for the output file (default: input name with the format's extension)")
	flags.StringVarP(&f.format, "format", "f", "jmeter", "Output format: "+strings.Join(converters.Formats(), ", "))
	flags.BoolVar(&f.har, "har", false, "Treat the input as a HAR capture")
	flags.StringVar(&f.baseURL, "base-url", "", "Override the base URL resolved from the input")
	flags.StringVar(&f.prompt, "prompt", "", "Free text; role names in it add role-based test cases")

	flags.StringVar(&f.planName, "test-plan-name", "", "JMeter test plan name")
	flags.IntVar(&f.threads, "threads", 0, "Concurrent users per thread group")
	flags.IntVar(&f.rampUp, "ramp-up", 0, "Ramp-up period in seconds")
	flags.IntVar(&f.loops, "loops", 0, "Iterations per thread, -1 for infinite")
	flags.StringVar(&f.groupBy, "group-by", "", "Thread group strategy: tag or path")
	flags.BoolVar(&f.csvDataSet, "csv-data-set", false, "Add a CSV Data Set Config reading test_data.csv")
	flags.BoolVar(&f.noAssertions, "no-assertions", false, "Skip response code and duration assertions")
	flags.BoolVar(&f.noCorrelation, "no-correlation", false, "Skip JSON extractors on POST responses")

	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// applyLoadFlags overlays the flags the user actually set on the configured defaults.
func applyLoadFlags(cmd *cobra.Command, f *generateFlags, load domain.LoadConfig) domain.LoadConfig {
	flags := cmd.Flags()
	if flags.Changed("test-plan-name") {
		load.TestPlanName = f.planName
	}
	if flags.Changed("threads") {
		load.Threads = f.threads
	}
	if flags.Changed("ramp-up") {
		load.RampUpSeconds = f.rampUp
	}
	if flags.Changed("loops") {
		load.Loops = f.loops
	}
	if flags.Changed("group-by") {
		load.GroupBy = f.groupBy
	}
	if flags.Changed("csv-data-set") {
		load.GenerateCSVConfig = f.csvDataSet
	}
	if f.noAssertions {
		load.AddAssertions = false
	}
	if f.noCorrelation {
		load.AddCorrelation = false
	}
	return load
}

func (c *CLI) runGenerate(cmd *cobra.Command, f *generateFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	svc, _, closeStore, err := c.service(cfg, c.log)
	defer closeStore()
	if err != nil {
		return err
	}

	c.log.Infof("Loading API description from: %s", f.inputFile)

	data, err := os.ReadFile(f.inputFile)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	source := loader.KindAuto
	if f.har {
		source = loader.KindHAR
	}
	load := applyLoadFlags(cmd, f, cfg.Load)

	var buf bytes.Buffer
	run, err := svc.Generate(cmd.Context(), generate.Request{
		Spec:         data,
		Source:       source,
		Format:       f.format,
		BaseURL:      f.baseURL,
		CustomPrompt: f.prompt,
		Load:         &load,
	}, &buf)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	output := f.outputFile
	if output == "" {
		output = strings.TrimSuffix(f.inputFile, filepath.Ext(f.inputFile)) + converters.Extension(run.Format)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	c.log.Infof("Successfully created: %s", output)
	if run.ID != "" {
		c.log.Infof("Recorded run %s", run.ID)
	}
	return nil
}
