package spreadsheet

import (
	"fmt"
	"io"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"
)

// ExportSheetName is the worksheet ExportXLSX writes into
const ExportSheetName = "Sheet1"

// ExportXLSX writes the non-default cells as an .xlsx workbook. formulas are
// written as workbook formulas, numeric text as numbers, other text as
// strings, and custom backgrounds as solid fills. the alpha channel is not
// representable and is dropped.
func (s *Spreadsheet) ExportXLSX(w io.Writer) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			err = errors.CombineErrors(err, closeErr)
		}
	}()

	styles := make(map[uint32]int) // background -> style id
	for _, cell := range s.NonDefaultCells() {
		addr, err := excelize.CoordinatesToCellName(cell.Column()+1, cell.Row()+1)
		if err != nil {
			return errors.Wrapf(err, "cell %s", cell.Name())
		}

		if err := writeCellContent(f, addr, cell); err != nil {
			return errors.Wrapf(err, "writing cell %s", cell.Name())
		}

		if cell.background == DefaultBackground {
			continue
		}
		styleID, ok := styles[cell.background]
		if !ok {
			styleID, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{
					Type:    "pattern",
					Pattern: 1,
					Color:   []string{fmt.Sprintf("%06X", cell.background&0xFFFFFF)},
				},
			})
			if err != nil {
				return errors.Wrapf(err, "creating fill for %s", formatBackground(cell.background))
			}
			styles[cell.background] = styleID
		}
		if err := f.SetCellStyle(ExportSheetName, addr, addr, styleID); err != nil {
			return errors.Wrapf(err, "styling cell %s", cell.Name())
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	s.logger.Debug("exported workbook", "styles", len(styles))
	return nil
}

func writeCellContent(f *excelize.File, addr string, cell *Cell) error {
	switch {
	case cell.text == "":
		return nil
	case cell.IsFormula():
		return f.SetCellFormula(ExportSheetName, addr, cell.text[1:])
	}
	if value, ok := parseCellNumber(cell.text); ok && !math.IsInf(value, 0) && !math.IsNaN(value) {
		return f.SetCellFloat(ExportSheetName, addr, value, -1, 64)
	}
	return f.SetCellStr(ExportSheetName, addr, cell.text)
}

