package main

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vogtb/gridcalc/packages/expression"
	"github.com/vogtb/gridcalc/packages/spreadsheet"
)

func (a *app) runEval(cmd *cobra.Command, args []string) error {
	tree, err := expression.New(args[0])
	if err != nil {
		return err
	}

	for _, v := range a.evalVars {
		name, raw, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return errors.Newf("--var %q is not NAME=VALUE", v)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Wrapf(err, "--var %s", name)
		}
		if _, used := tree.Variable(name); !used {
			a.logger.Warn("variable is not used by the expression", "name", name)
		}
		tree.SetVariable(name, value)
	}

	out := cmd.OutOrStdout()
	if a.evalPostfix {
		fmt.Fprintln(out, expression.FormatPostfix(tree.Postfix()))
	}
	result, err := tree.Evaluate()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strconv.FormatFloat(result, 'g', -1, 64))
	return nil
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	s, err := a.loadSheet(args[0], false)
	if err != nil {
		return err
	}

	tbl := tablewriter.NewWriter(cmd.OutOrStdout())
	tbl.SetHeader([]string{"Cell", "Text", "Value", "Background"})
	for _, cell := range s.NonDefaultCells() {
		background := ""
		if cell.Background() != spreadsheet.DefaultBackground {
			background = fmt.Sprintf("%08X", cell.Background())
		}
		tbl.Append([]string{cell.Name(), cell.Text(), cell.Value(), background})
	}
	tbl.Render()
	return nil
}

func (a *app) runSet(cmd *cobra.Command, args []string) error {
	path, name, text := args[0], args[1], args[2]
	s, err := a.loadSheet(path, true)
	if err != nil {
		return err
	}

	cell := s.GetCellByName(name)
	if cell == nil {
		return errors.Newf("no cell named %q in a %dx%d grid", name, s.RowCount(), s.ColumnCount())
	}
	if err := s.SetCellText(cell.Row(), cell.Column(), text); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", cell.Name(), cell.Value())
	return nil
}

func (a *app) runExport(cmd *cobra.Command, args []string) (err error) {
	s, err := a.loadSheet(args[0], false)
	if err != nil {
		return err
	}

	f, err := os.Create(args[1])
	if err != nil {
		return errors.Wrapf(err, "creating %s", args[1])
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.CombineErrors(err, closeErr)
		}
	}()
	return s.ExportXLSX(f)
}

// loadSheet creates a spreadsheet of the configured size and loads path
// into it. with allowMissing a missing file yields an empty sheet.
func (a *app) loadSheet(path string, allowMissing bool) (*spreadsheet.Spreadsheet, error) {
	s, err := a.cfg.NewSpreadsheet(a.logger)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if allowMissing && os.IsNotExist(err) {
			a.logger.Debug("starting a new spreadsheet", "path", path)
			return s, nil
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	if err := s.Load(f); err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return s, nil
}
