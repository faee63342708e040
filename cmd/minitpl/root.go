package main

import (
	"fmt"

	"github.com/minihttp/minitpl/pkg/minitpl"
	"github.com/spf13/cobra"
)

// app holds the state shared by every subcommand. It is filled in by the
// root command's PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	strict     bool

	config *minitpl.Config
	log    *minitpl.Logger
	engine *minitpl.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "minitpl",
		Short: "minitpl renders HTML pages from ${...}, $if and $foreach templates",
		Long: `minitpl renders HTML templates written in a small directive language:

  ${Path}                                  interpolation
  $if(Path) ... $else ... $endif           conditionals
  $foreach(var item in Path) ... $endfor   iteration

Models are JSON or YAML files. Configuration comes from an optional YAML
file (--config) and MINITPL_* environment variables, which win over the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error or off")
	flags.BoolVar(&a.strict, "strict", false, "fail on malformed templates instead of rendering them as text")

	root.AddCommand(
		newRenderCmd(a),
		newCheckCmd(a),
		newRefsCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup layers configuration as environment, then --config file (with the
// environment reapplied over it), then flags, and validates the result once.
func (a *app) setup(cmd *cobra.Command) error {
	config := minitpl.ConfigFromEnvironment()
	if a.configPath != "" {
		loaded, err := minitpl.LoadConfigFile(a.configPath)
		if err != nil {
			return err
		}
		config = loaded
	}
	if a.logLevel != "" {
		config.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("strict") {
		config.StrictMode = a.strict
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.config = config
	a.log = minitpl.NewLoggerFromConfig(cmd.ErrOrStderr(), config)
	a.engine = minitpl.NewWithOptions(
		minitpl.WithConfig(config),
		minitpl.WithLogger(a.log),
	)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "minitpl %s (commit %s)\n", Version, Commit)
		},
	}
}
