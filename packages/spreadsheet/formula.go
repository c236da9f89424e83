package spreadsheet

import (
	"github.com/vogtb/gridcalc/packages/expression"
)

// FormulaTable stores compiled formulas centrally. cells with the same
// formula text share one expression tree, and a formula is compiled once no
// matter how often a cascade recalculates the cells using it. sharing is
// safe because the engine binds every variable of a tree right before
// evaluating it.
type FormulaTable struct {
	// core formula storage

	index     map[string]uint32           // expression text -> formula ID
	trees     map[uint32]*expression.Tree // formula ID -> compiled tree
	refCounts map[uint32]int              // formula ID -> reference count

	// cell tracking

	cellsUsingFormula map[uint32]map[CellAddress]struct{} // formula ID -> cells using it
	formulaAtCell     map[CellAddress]uint32              // cell -> formula ID (reverse index)

	nextID uint32
}

// NewFormulaTable creates a new formula table
func NewFormulaTable() *FormulaTable {
	return &FormulaTable{
		index:             make(map[string]uint32),
		trees:             make(map[uint32]*expression.Tree),
		refCounts:         make(map[uint32]int),
		cellsUsingFormula: make(map[uint32]map[CellAddress]struct{}),
		formulaAtCell:     make(map[CellAddress]uint32),
		nextID:            1, // start at 1, reserve 0 for no formula
	}
}

// Compile returns the tree for expr and records that cell uses it,
// releasing whatever formula the cell used before. when expr does not parse
// the cell keeps its previous formula.
func (ft *FormulaTable) Compile(cell CellAddress, expr string) (*expression.Tree, error) {
	if id, exists := ft.index[expr]; exists {
		if current, ok := ft.formulaAtCell[cell]; !ok || current != id {
			ft.Release(cell)
			ft.addCellReference(id, cell)
		}
		return ft.trees[id], nil
	}

	tree, err := expression.New(expr)
	if err != nil {
		return nil, err
	}

	ft.Release(cell)
	id := ft.nextID
	ft.nextID++
	ft.index[expr] = id
	ft.trees[id] = tree
	ft.cellsUsingFormula[id] = make(map[CellAddress]struct{})
	ft.addCellReference(id, cell)
	return tree, nil
}

func (ft *FormulaTable) addCellReference(id uint32, cell CellAddress) {
	ft.cellsUsingFormula[id][cell] = struct{}{}
	ft.formulaAtCell[cell] = id
	ft.refCounts[id]++
}

// Release drops the cell's reference to its formula. the formula is removed
// once no cell uses it.
func (ft *FormulaTable) Release(cell CellAddress) {
	id, exists := ft.formulaAtCell[cell]
	if !exists {
		return
	}
	delete(ft.formulaAtCell, cell)
	delete(ft.cellsUsingFormula[id], cell)

	ft.refCounts[id]--
	if ft.refCounts[id] <= 0 {
		ft.removeFormula(id)
	}
}

// removeFormula completely removes a formula from the table
func (ft *FormulaTable) removeFormula(id uint32) {
	if tree, exists := ft.trees[id]; exists {
		delete(ft.index, tree.Expression())
	}
	delete(ft.trees, id)
	delete(ft.refCounts, id)
	delete(ft.cellsUsingFormula, id)
}

// GetCellsUsingFormula returns the cells whose formula text is expr,
// row-major
func (ft *FormulaTable) GetCellsUsingFormula(expr string) []CellAddress {
	id, exists := ft.index[expr]
	if !exists {
		return nil
	}
	result := make([]CellAddress, 0, len(ft.cellsUsingFormula[id]))
	for cell := range ft.cellsUsingFormula[id] {
		result = append(result, cell)
	}
	sortAddresses(result)
	return result
}

// GetFormulaAtCell returns the expression text the cell's formula was
// compiled from
func (ft *FormulaTable) GetFormulaAtCell(cell CellAddress) (string, bool) {
	id, exists := ft.formulaAtCell[cell]
	if !exists {
		return "", false
	}
	return ft.trees[id].Expression(), true
}

// GetReferenceCount returns the number of cells using the formula expr
func (ft *FormulaTable) GetReferenceCount(expr string) int {
	return ft.refCounts[ft.index[expr]]
}

// Count returns the number of distinct formulas
func (ft *FormulaTable) Count() int {
	return len(ft.trees)
}

// Clear removes all formulas
func (ft *FormulaTable) Clear() {
	ft.index = make(map[string]uint32)
	ft.trees = make(map[uint32]*expression.Tree)
	ft.refCounts = make(map[uint32]int)
	ft.cellsUsingFormula = make(map[uint32]map[CellAddress]struct{})
	ft.formulaAtCell = make(map[CellAddress]uint32)
	ft.nextID = 1
}
