package spreadsheet

import "strconv"

// DefaultBackground is the ARGB background of an untouched cell (opaque white)
const DefaultBackground uint32 = 0xFFFFFFFF

// CellErrorKind represents the reference errors a formula cell can carry
type CellErrorKind uint8

const (
	CellErrorNone              CellErrorKind = 0
	CellErrorBadReference      CellErrorKind = 1 // name does not decode to a cell in the grid
	CellErrorSelfReference     CellErrorKind = 2 // formula references its own cell
	CellErrorCircularReference CellErrorKind = 3 // referenced cell already depends on this cell
)

// ErrorMapper maps error kinds to the tag a cell displays in place of a value
var ErrorMapper = map[CellErrorKind]string{
	CellErrorBadReference:      "!(bad reference)",
	CellErrorSelfReference:     "!(self reference)",
	CellErrorCircularReference: "!(Circular reference)",
}

func (k CellErrorKind) String() string {
	if tag, ok := ErrorMapper[k]; ok {
		return tag
	}
	return ""
}

// Cell represents one grid cell. a cell's value and error are only ever
// written by the recalculation engine; callers change a cell through
// Spreadsheet.SetCellText and Spreadsheet.SetCellBackground.
type Cell struct {
	address    CellAddress
	text       string        // raw input, formulas start with '='
	value      string        // derived display value
	errorKind  CellErrorKind // while set, Value returns the error tag
	background uint32        // ARGB

	dependsOn  map[CellAddress]*Cell // cells this cell's formula references
	dependents map[CellAddress]*Cell // cells whose formulas reference this cell
}

func newCell(row, column int) *Cell {
	return &Cell{
		address:    CellAddress{Row: row, Column: column},
		background: DefaultBackground,
		dependsOn:  make(map[CellAddress]*Cell),
		dependents: make(map[CellAddress]*Cell),
	}
}

func (c *Cell) Row() int             { return c.address.Row }
func (c *Cell) Column() int          { return c.address.Column }
func (c *Cell) Address() CellAddress { return c.address }
func (c *Cell) Name() string         { return c.address.Name() }
func (c *Cell) Text() string         { return c.text }
func (c *Cell) Background() uint32   { return c.background }
func (c *Cell) Error() CellErrorKind { return c.errorKind }
func (c *Cell) HasError() bool       { return c.errorKind != CellErrorNone }

// Value returns the display value, or the error tag when the cell has an
// error
func (c *Cell) Value() string {
	if c.errorKind != CellErrorNone {
		return c.errorKind.String()
	}
	return c.value
}

// IsFormula reports whether the cell text is a formula
func (c *Cell) IsFormula() bool {
	return len(c.text) > 0 && c.text[0] == '='
}

// IsDefault reports whether the cell has neither text nor a custom
// background
func (c *Cell) IsDefault() bool {
	return c.text == "" && c.background == DefaultBackground
}

// DependsOn returns the addresses this cell references, row-major
func (c *Cell) DependsOn() []CellAddress {
	return addressesOf(c.dependsOn)
}

// Dependents returns the addresses of cells referencing this cell, row-major
func (c *Cell) Dependents() []CellAddress {
	return addressesOf(c.dependents)
}

// numericValue is the value a formula sees when it references this cell.
// empty, textual and error cells read as 0.
func (c *Cell) numericValue() float64 {
	if c.errorKind != CellErrorNone {
		return 0
	}
	value, ok := parseCellNumber(c.value)
	if !ok {
		return 0
	}
	return value
}

// reset returns the cell to its freshly constructed state. edges are
// dropped on this side only; callers clearing the whole grid reset every
// cell.
func (c *Cell) reset() {
	c.text = ""
	c.value = ""
	c.errorKind = CellErrorNone
	c.background = DefaultBackground
	c.dependsOn = make(map[CellAddress]*Cell)
	c.dependents = make(map[CellAddress]*Cell)
}

// formatValue renders a computed result in its shortest round-trip form
func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}

func addressesOf(cells map[CellAddress]*Cell) []CellAddress {
	result := make([]CellAddress, 0, len(cells))
	for addr := range cells {
		result = append(result, addr)
	}
	sortAddresses(result)
	return result
}
