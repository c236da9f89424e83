// Package spreadsheet implements a fixed-size grid of cells whose formulas
// reference other cells, with dependency tracking, recalculation, undo/redo
// and XML persistence.
package spreadsheet

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-hclog"

	"github.com/vogtb/gridcalc/packages/expression"
)

// AppErrorCode represents gRPC-style error codes for application-level errors.
// note that we are skipping error codes that don't make sense for our use-case,
// like unauthenticated, or permission denied.
type AppErrorCode int

const (
	// OK indicates the operation completed successfully.
	OK AppErrorCode = 0

	// InvalidArgument indicates client specified an invalid argument.
	InvalidArgument AppErrorCode = 3

	// NotFound means some requested entity (e.g., a cell name) was not found.
	NotFound AppErrorCode = 5

	// OutOfRange means operation was attempted past the valid range.
	OutOfRange AppErrorCode = 11

	// Internal errors. Means some invariants expected by underlying
	// system has been broken.
	Internal AppErrorCode = 13
)

// AppError represents errors at the application level (not
// cell reference errors)
type AppError struct {
	Code    AppErrorCode
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// NewApplicationError creates a new application error
func NewApplicationError(code AppErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// ErrorCode returns the application error code carried by err. nil is OK,
// errors without a code report Internal.
func ErrorCode(err error) AppErrorCode {
	if err == nil {
		return OK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return Internal
}

// ChangeProperty names the part of a cell a change notification is about
type ChangeProperty uint8

const (
	PropertyValue      ChangeProperty = 1 // text, value or error
	PropertyBackground ChangeProperty = 2
)

func (p ChangeProperty) String() string {
	switch p {
	case PropertyValue:
		return "value"
	case PropertyBackground:
		return "background"
	}
	return "unknown"
}

// ChangeListener is called after a cell changed
type ChangeListener func(cell *Cell, property ChangeProperty)

// Option configures a Spreadsheet
type Option func(*Spreadsheet)

// WithLogger sets the logger. the default discards everything.
func WithLogger(logger hclog.Logger) Option {
	return func(s *Spreadsheet) {
		s.logger = logger
	}
}

// WithListener registers a change listener at construction
func WithListener(listener ChangeListener) Option {
	return func(s *Spreadsheet) {
		s.listeners = append(s.listeners, listener)
	}
}

// Spreadsheet is a fixed rows x columns grid of cells. it combines the
// dependency graph, formula evaluation and undo/redo history into a single
// API. a Spreadsheet is not safe for concurrent use.
type Spreadsheet struct {
	rows             int
	columns          int
	cells            [][]*Cell
	history          *History
	formulas         *FormulaTable
	calculationStack *CalculationStack
	listeners        []ChangeListener
	logger           hclog.Logger
}

// NewSpreadsheet creates a spreadsheet with every cell present and empty.
// columns is limited to MaxColumns so that every cell has a name.
func NewSpreadsheet(rows, columns int, opts ...Option) (*Spreadsheet, error) {
	if rows <= 0 {
		return nil, NewApplicationError(InvalidArgument, fmt.Sprintf("rows must be positive, got %d", rows))
	}
	if columns <= 0 || columns > MaxColumns {
		return nil, NewApplicationError(InvalidArgument,
			fmt.Sprintf("columns must be between 1 and %d, got %d", MaxColumns, columns))
	}

	s := &Spreadsheet{
		rows:             rows,
		columns:          columns,
		cells:            make([][]*Cell, rows),
		history:          NewHistory(),
		formulas:         NewFormulaTable(),
		calculationStack: NewCalculationStack(),
		logger:           hclog.NewNullLogger(),
	}
	for row := range s.cells {
		s.cells[row] = make([]*Cell, columns)
		for col := range s.cells[row] {
			s.cells[row][col] = newCell(row, col)
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

type SpreadsheetInterface interface {
	// cell methods

	GetCell(row, column int) *Cell
	GetCellByName(name string) *Cell
	SetCellText(row, column int, text string) error
	SetCellBackground(row, column int, argb uint32) error

	// undo/redo methods

	Undo() (string, bool, error)
	Redo() (string, bool, error)

	// common methods

	RowCount() int
	ColumnCount() int
	AddListener(listener ChangeListener)
}

// Implementation of SpreadsheetInterface

var _ SpreadsheetInterface = (*Spreadsheet)(nil)

// RowCount returns the number of rows
func (s *Spreadsheet) RowCount() int {
	return s.rows
}

// ColumnCount returns the number of columns
func (s *Spreadsheet) ColumnCount() int {
	return s.columns
}

// AddListener registers a listener notified after every cell change
func (s *Spreadsheet) AddListener(listener ChangeListener) {
	s.listeners = append(s.listeners, listener)
}

// GetCell returns the cell at row, column or nil when out of range
func (s *Spreadsheet) GetCell(row, column int) *Cell {
	if !s.inBounds(CellAddress{Row: row, Column: column}) {
		return nil
	}
	return s.cells[row][column]
}

// GetCellByName returns the cell for an A1-style name or nil when the name
// does not decode to a cell in the grid
func (s *Spreadsheet) GetCellByName(name string) *Cell {
	addr, ok := ParseCellName(name)
	if !ok {
		return nil
	}
	return s.GetCell(addr.Row, addr.Column)
}

// SetCellText assigns text to a cell and recalculates it and everything
// that depends on it. text starting with '=' is a formula. a formula that
// does not parse returns an error wrapping the expression parse error and
// leaves the cell's text and value as they were; its previous references
// are dropped.
func (s *Spreadsheet) SetCellText(row, column int, text string) error {
	cell, err := s.cellAt(row, column)
	if err != nil {
		return err
	}
	return s.assignText(cell, text)
}

// SetCellBackground sets the ARGB background of a cell
func (s *Spreadsheet) SetCellBackground(row, column int, argb uint32) error {
	cell, err := s.cellAt(row, column)
	if err != nil {
		return err
	}
	s.setBackground(cell, argb)
	return nil
}

// AffectedCells returns every cell that recalculates when the given cell
// changes, row-major
func (s *Spreadsheet) AffectedCells(row, column int) ([]CellAddress, error) {
	cell, err := s.cellAt(row, column)
	if err != nil {
		return nil, err
	}
	return allDependents(cell), nil
}

// NonDefaultCells returns the cells that have text or a custom background,
// row-major
func (s *Spreadsheet) NonDefaultCells() []*Cell {
	var result []*Cell
	for _, row := range s.cells {
		for _, cell := range row {
			if !cell.IsDefault() {
				result = append(result, cell)
			}
		}
	}
	return result
}

func (s *Spreadsheet) inBounds(addr CellAddress) bool {
	return addr.Row >= 0 && addr.Row < s.rows && addr.Column >= 0 && addr.Column < s.columns
}

func (s *Spreadsheet) cellAt(row, column int) (*Cell, error) {
	if !s.inBounds(CellAddress{Row: row, Column: column}) {
		return nil, NewApplicationError(OutOfRange,
			fmt.Sprintf("cell (%d, %d) is outside the %dx%d grid", row, column, s.rows, s.columns))
	}
	return s.cells[row][column], nil
}

// assignText starts a new recalculation pass at cell
func (s *Spreadsheet) assignText(cell *Cell, text string) error {
	s.calculationStack.reset()
	err := s.recalculate(cell, text)
	s.logger.Trace("recalculation finished", "cell", cell.Name(), "cells", s.calculationStack.completedCount())
	return err
}

// recalculate applies text to cell, then recalculates the cell's
// dependents from their own text. dependents already on the current
// recalculation path are skipped.
func (s *Spreadsheet) recalculate(cell *Cell, text string) error {
	s.calculationStack.push(cell.address)
	defer s.calculationStack.pop()

	s.logger.Trace("recalculating cell", "cell", cell.Name(), "text", text, "depth", s.calculationStack.depth())

	cell.errorKind = CellErrorNone
	clearPrecedents(cell)

	if !strings.HasPrefix(text, "=") {
		s.formulas.Release(cell.address)
		cell.text = text
		cell.value = text
	} else {
		tree, err := s.formulas.Compile(cell.address, text[1:])
		if err != nil {
			return errors.Wrapf(err, "cell %s: parsing %q", cell.Name(), text)
		}
		cell.text = text
		if s.bindReferences(cell, tree) {
			result, err := tree.Evaluate()
			if err != nil {
				return errors.Wrapf(err, "cell %s: evaluating %q", cell.Name(), text)
			}
			cell.value = formatValue(result)
		}
	}

	s.notify(cell, PropertyValue)

	var errs error
	for _, dependent := range sortedDependents(cell) {
		if s.calculationStack.isProcessing(dependent.address) {
			s.logger.Trace("skipping cell already being recalculated", "cell", dependent.Name(), "precedent", cell.Name())
			continue
		}
		if err := s.recalculate(dependent, dependent.text); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
	}
	return errs
}

// bindReferences validates every variable of tree as a cell reference and
// binds it to the referenced cell's numeric value, installing one edge per
// reference. a bad or self reference removes the edges installed so far; a
// circular reference keeps only its own edge. it reports whether every
// reference bound.
func (s *Spreadsheet) bindReferences(cell *Cell, tree *expression.Tree) bool {
	var installed []*Cell
	fail := func(kind CellErrorKind, name string) bool {
		for _, ref := range installed {
			removeDependency(cell, ref)
		}
		cell.errorKind = kind
		cell.value = ""
		s.logger.Debug("cell reference error", "cell", cell.Name(), "reference", name, "error", kind)
		return false
	}

	for _, name := range tree.Variables() {
		addr, ok := ParseCellName(name)
		if !ok || !s.inBounds(addr) {
			return fail(CellErrorBadReference, name)
		}
		if addr == cell.address {
			return fail(CellErrorSelfReference, name)
		}

		ref := s.cells[addr.Row][addr.Column]
		if dependsTransitively(cell, ref) {
			fail(CellErrorCircularReference, name)
			addDependency(cell, ref)
			return false
		}

		tree.SetVariable(name, ref.numericValue())
		addDependency(cell, ref)
		installed = append(installed, ref)
	}
	return true
}

func (s *Spreadsheet) setBackground(cell *Cell, argb uint32) {
	if cell.background == argb {
		return
	}
	cell.background = argb
	s.notify(cell, PropertyBackground)
}

func (s *Spreadsheet) notify(cell *Cell, property ChangeProperty) {
	for _, listener := range s.listeners {
		listener(cell, property)
	}
}

// clear resets every cell and both history stacks
func (s *Spreadsheet) clear() {
	for _, row := range s.cells {
		for _, cell := range row {
			cell.reset()
		}
	}
	s.history.reset()
	s.formulas.Clear()
	s.calculationStack.reset()
}
