package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	configFile string
	logDir     string
	verbose    bool
	noConsole  bool
}

// Execute runs the command line under a context cancelled by SIGINT or
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, newRootCmd())
}

// execute prints the usage of the closest command when the arguments name
// no known sub-command.
func execute(ctx context.Context, root *cobra.Command) error {
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil && cmd != nil && strings.HasPrefix(err.Error(), "unknown command") {
		cmd.PrintErrln(cmd.UsageString())
	}
	return err
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:           "amxctl",
		Short:         "AMX BPM administration tools",
		Long:          "amxctl reports on AMX BPM enterprises, nodes and applications through the administrator services, and runs the maintenance tasks of a BPM installation.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		cmd.PrintErrln(cmd.UsageString())
		return err
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&global.configFile, "config", "", "settings file (default: amxctrl.toml in ./cfg, ../cfg, . or ~/.amxctl)")
	flags.StringVar(&global.logDir, "log-dir", "", "directory of the command log file (default: [log] dir)")
	flags.BoolVarP(&global.verbose, "verbose", "v", false, "log at debug level")
	flags.BoolVar(&global.noConsole, "no-console", false, "write log lines to the log file only")

	app := wireApp(global)
	rootCmd.AddCommand(
		newVersionCmd(),
		newAmxCmd(app),
		newAppsCmd(app),
		newNodeAppsCmd(app),
		newDAACmd(app),
		newHaltedCmd(app),
		newReadyCmd(app),
		newAnalyseCmd(app),
		newDriversCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
