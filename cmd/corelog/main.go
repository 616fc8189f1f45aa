package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HorseArcher567/corelog/pkg/root"
	"github.com/HorseArcher567/corelog/pkg/xlog"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "corelog",
	Short: "Seven-level service logger",
	Long: `Writes records to error.log, combined.log and a daily rotating file under
<root>/<namespace>/logs/<project>, and to the console.`,
	SilenceUsage: true,
}

var emitCmd = &cobra.Command{
	Use:   "emit [level] [message]",
	Short: "Write one record",
	Long:  `Open the logger described by the flags or --config and write one record at the given level`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := xlog.ParseLevel(args[0])
		if err != nil {
			return err
		}

		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}

		pairs, _ := cmd.Flags().GetStringArray("meta")
		meta, err := parseMeta(pairs)
		if err != nil {
			return err
		}

		logger, err := xlog.New(opts)
		if err != nil {
			return err
		}
		defer logger.Close()

		logger.Log(level, strings.Join(args[1:], " "), meta)
		return nil
	},
}

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the log levels",
	Run: func(cmd *cobra.Command, args []string) {
		scale := xlog.DefaultScale()
		for _, l := range xlog.Levels() {
			name := l.String()
			if !noColor() {
				name = scale.Paint(l)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", int(l), name)
		}
	},
}

var dirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the log directory without creating it",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := loadOptions(cmd)
		if err != nil {
			return err
		}
		opts = opts.Normalize()
		if err := opts.Validate(); err != nil {
			return err
		}

		dir, err := opts.LogDir(root.Default())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dir)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "corelog version %s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "Options file (.yaml/.yml/.json/.toml)")
	flags.StringP("namespace", "n", "", "Namespace, first segment of the log directory")
	flags.Bool("default-namespace", false, "Use the default namespace when --namespace is empty")
	flags.StringP("project", "p", "", "Project name")
	flags.StringP("level", "l", "", "Minimum log level")
	flags.String("package-version", "", "Package version embedded in every line")
	flags.String("root", "", "Root directory (default $CHIA_ROOT or ~/.chia/mainnet)")

	emitCmd.Flags().StringArrayP("meta", "m", nil, "Metadata as key=value, repeatable")

	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(dirCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
