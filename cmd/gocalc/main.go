package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/evaluator"
	"github.com/njchilds90/gocalc/internal/logging"
)

const longHelp = `Single-variable calculus from the command line or over HTTP.

Operations: derivative, indefinite and definite (including improper)
integrals, limits and simplification. Expressions use Python syntax:
x**2 or x^2, sin(x), exp(x), log(x), sqrt(x), pi, E and oo for infinity.
Multiplication is always explicit: write 2*x, not 2x.`

var exampleUsage = strings.TrimSpace(`
  gocalc eval --op diff "x**2*sin(x)"
  gocalc eval --op definite --lower 1 --upper oo "1/x**2"
  gocalc eval --op limit --point 0 --latex "sin(x)/x"
  gocalc serve --listen :8080
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// app carries state shared by all subcommands once the root's
// PersistentPreRunE has run.
type app struct {
	cfg     config.Config
	cfgPath string
	changed map[string]bool
	log     zerolog.Logger
	eval    *evaluator.Evaluator
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	a := &app{cfg: config.DefaultConfig(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "gocalc",
		Short:         "Single-variable calculus evaluator",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "Path to config file (default $HOME/.gocalc/config.toml)")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "Log format (console or json)")

	root.AddCommand(a.evalCommand(), a.renderCommand(), a.opsCommand(), a.serveCommand())
	return root
}

// load layers the config file and GOCALC_* variables under the flags the
// user set explicitly, then builds the logger and evaluator.
func (a *app) load(cmd *cobra.Command) error {
	cfgFile := a.cfgPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}

	a.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { a.changed[f.Name] = true })

	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.ApplyFileConfig(&a.cfg, fc, a.changed); err != nil {
			return err
		}
		a.cfgPath = cfgFile
	} else if a.cfgPath != "" {
		return fmt.Errorf("config file %s not found", a.cfgPath)
	}

	if err := config.ApplyEnvConfig(&a.cfg, a.changed); err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, a.cfg.LogFormat, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	a.eval = evaluator.New(log)
	return nil
}
