package spreadsheet

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// CalculationStack tracks the cells on the current recalculation path. a
// cell already on the path is not entered again, which is what stops a
// circular pair from recursing forever.
type CalculationStack struct {
	items      []CellAddress            // cells being recalculated, outermost first
	processing map[CellAddress]struct{} // currently being processed (cycle detection)
	completed  map[CellAddress]struct{} // recalculated at least once in this pass
}

// NewCalculationStack creates a new calculation stack
func NewCalculationStack() *CalculationStack {
	return &CalculationStack{
		items:      make([]CellAddress, 0),
		processing: make(map[CellAddress]struct{}),
		completed:  make(map[CellAddress]struct{}),
	}
}

// push adds a cell to the stack
func (cs *CalculationStack) push(addr CellAddress) {
	cs.items = append(cs.items, addr)
	cs.processing[addr] = struct{}{}
}

// pop removes and returns the top cell from the stack
func (cs *CalculationStack) pop() (CellAddress, bool) {
	if len(cs.items) == 0 {
		return CellAddress{}, false
	}
	addr := cs.items[len(cs.items)-1]
	cs.items = cs.items[:len(cs.items)-1]
	delete(cs.processing, addr)
	cs.completed[addr] = struct{}{}
	return addr, true
}

// isProcessing checks if a cell is currently being processed
func (cs *CalculationStack) isProcessing(addr CellAddress) bool {
	_, exists := cs.processing[addr]
	return exists
}

// depth returns the number of cells on the current path
func (cs *CalculationStack) depth() int {
	return len(cs.items)
}

// completedCount returns how many distinct cells were recalculated in this
// pass
func (cs *CalculationStack) completedCount() int {
	return len(cs.completed)
}

// reset clears the stack
func (cs *CalculationStack) reset() {
	cs.items = cs.items[:0]
	cs.processing = make(map[CellAddress]struct{})
	cs.completed = make(map[CellAddress]struct{})
}

// parseCellNumber reads a referenced cell's value as a number. surrounding
// whitespace is ignored; values too large for a float64 read as +-Inf.
func parseCellNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return value, true
		}
		return 0, false
	}
	return value, true
}
