// gridcalc evaluates expressions and edits saved spreadsheets from the
// command line.
package main

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/internal/config"
)

// app holds the state shared by every command
type app struct {
	configPath string
	cfg        config.Config
	logger     hclog.Logger

	evalVars    []string
	evalPostfix bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		cfg:    config.Default(),
		logger: hclog.NewNullLogger(),
	}

	rootCmd := &cobra.Command{
		Use:           "gridcalc [command] (flags)",
		Short:         "spreadsheet calculation engine",
		Long:          ``,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger("gridcalc", cmd.ErrOrStderr())
			return nil
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().StringVar(
		&a.configPath, "config", "", "path to a YAML config file (defaults apply when empty)")

	evalCmd := &cobra.Command{
		Use:   "eval <expr>",
		Short: "evaluate an arithmetic expression",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runEval,
	}
	evalCmd.Flags().StringArrayVar(
		&a.evalVars, "var", nil, "set a variable, NAME=VALUE (repeatable)")
	evalCmd.Flags().BoolVar(
		&a.evalPostfix, "postfix", false, "print the postfix form before the result")

	showCmd := &cobra.Command{
		Use:   "show <file.xml>",
		Short: "print the non-empty cells of a saved spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runShow,
	}

	setCmd := &cobra.Command{
		Use:   "set <file.xml> <cell> <text>",
		Short: "set the text of one cell and save the spreadsheet",
		Long:  "set the text of one cell and save the spreadsheet. the file is created when it does not exist.",
		Args:  cobra.ExactArgs(3),
		RunE:  a.runSet,
	}

	exportCmd := &cobra.Command{
		Use:   "export <file.xml> <out.xlsx>",
		Short: "write a saved spreadsheet as an xlsx workbook",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runExport,
	}

	cobra.EnableCommandSorting = false
	rootCmd.AddCommand(
		evalCmd,
		showCmd,
		setCmd,
		exportCmd,
	)
	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		// Cobra has already printed the error message.
		os.Exit(1)
	}
}
