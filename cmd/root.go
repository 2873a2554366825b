// Package cmd implements the elementbind command line.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chrisuehlinger/elementbind/config"
)

var version = "dev"

// app carries state shared by the commands of one invocation.
type app struct {
	configPath string
	v          *viper.Viper
	cfg        config.Config
	logger     *slog.Logger
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the elementbind command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "elementbind",
		Short: "Resolve out-of-band element bindings",
		Long: `elementbind loads an HTML page, runs the scripts that attach bindings to
its elements, and prints the bindings the active resolver produces for each node.

Bindings come from two sources: the page's data-bind attributes and the
element registry filled by scripts through the global "bindings" object.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file path (YAML)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newResolveCmd(a))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "elementbind version %s\n", version)
		},
	})

	return root
}

// init loads configuration from file, environment and flags, and sets up logging.
func (a *app) init(cmd *cobra.Command) error {
	v, err := config.New(a.configPath)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a.v = v
	a.cfg = cfg
	a.logger = newLogger(cmd.ErrOrStderr(), cfg.Level())
	slog.SetDefault(a.logger)
	return nil
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"log-level": "log_level",
	"order":     "resolver_order",
	"attribute": "attribute",
	"output":    "output",
	"watch":     "watch",
	"debounce":  "debounce",
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %s: %w", flag, err)
		}
	}
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
