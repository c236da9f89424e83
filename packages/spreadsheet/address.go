package spreadsheet

import (
	"fmt"
	"sort"
	"strconv"
)

// MaxColumns is the widest grid a single-letter column name can address
const MaxColumns = 26

// CellAddress identifies a cell by zero-based row and column
type CellAddress struct {
	Row    int
	Column int
}

// Name returns the A1-style name of the address, e.g. {0, 0} -> "A1"
func (a CellAddress) Name() string {
	return CellName(a.Row, a.Column)
}

func (a CellAddress) String() string {
	return a.Name()
}

// less orders addresses row-major
func (a CellAddress) less(b CellAddress) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Column < b.Column
}

// CellName formats zero-based coordinates as an A1-style name. the column
// must be below MaxColumns.
func CellName(row, column int) string {
	return fmt.Sprintf("%c%d", 'A'+rune(column), row+1)
}

// ParseCellName decodes an A1-style name: one uppercase letter for the
// column followed by the one-based row number. bounds are not checked here.
func ParseCellName(name string) (CellAddress, bool) {
	if len(name) < 2 {
		return CellAddress{}, false
	}
	letter := name[0]
	if letter < 'A' || letter > 'Z' {
		return CellAddress{}, false
	}
	digits := name[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return CellAddress{}, false
		}
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return CellAddress{}, false
	}
	return CellAddress{Row: row - 1, Column: int(letter - 'A')}, true
}

// sortAddresses sorts addresses in place, row-major
func sortAddresses(addrs []CellAddress) {
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].less(addrs[j])
	})
}
