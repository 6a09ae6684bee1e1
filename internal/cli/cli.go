// Package cli provides the command-line interface for loadplan.
package cli

import (
	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/loadplan/internal/config"
	"github.com/GabrielNunesIT/loadplan/internal/generate"
	"github.com/GabrielNunesIT/loadplan/internal/store"
)

// Version is reported by the MCP server and --version.
var Version = "dev"

// CLI holds the command-line interface configuration.
type CLI struct {
	log        logger.ILogger
	rootCmd    *cobra.Command
	configPath string
	noHistory  bool
}

// New creates a new CLI instance.
func New(log logger.ILogger) *CLI {
	cli := &CLI{
		log: log,
	}

	cli.rootCmd = &cobra.Command{
		Use:           "loadplan",
		Short:         "Generate JMeter load tests and functional test cases from API descriptions",
		Long:          "A CLI tool that turns OpenAPI 3.x, Swagger 2.0 and HAR captures into Apache JMeter test plans, CSV test-case catalogues and PDF, Word or Confluence reports.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.rootCmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Path to a YAML config file (default: ./"+config.DefaultFile+" when present)")
	cli.rootCmd.PersistentFlags().BoolVar(&cli.noHistory, "no-history", false, "Do not record or read run history")

	cli.rootCmd.AddCommand(
		cli.generateCommand(),
		cli.inspectCommand(),
		cli.runsCommand(),
		cli.serveCommand(),
		cli.mcpCommand(),
	)

	return cli
}

// Execute runs the CLI.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// SetArgs overrides os.Args, mostly for tests.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

func (c *CLI) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

// openStore returns nil when history is disabled.
func (c *CLI) openStore(cfg *config.Config) (store.Store, error) {
	if c.noHistory || !cfg.History.Enabled {
		return nil, nil
	}
	return store.NewSQLiteStore(cfg.History.DBPath)
}

// service builds a generation service from cfg, recording runs when history
// is enabled. The returned close func is never nil.
func (c *CLI) service(cfg *config.Config, log logger.ILogger) (*generate.Service, store.Store, func(), error) {
	st, err := c.openStore(cfg)
	if err != nil {
		return nil, nil, func() {}, err
	}

	opts := []generate.Option{
		generate.WithLoadDefaults(cfg.Load),
		generate.WithHARFilter(cfg.HAR),
	}
	closer := func() {}
	if st != nil {
		opts = append(opts, generate.WithStore(st))
		closer = func() {
			if err := st.Close(); err != nil {
				log.Errorf("Failed to close run history: %v", err)
			}
		}
	}
	return generate.New(log, opts...), st, closer, nil
}
