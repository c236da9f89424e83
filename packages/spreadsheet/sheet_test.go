package spreadsheet

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogtb/gridcalc/packages/expression"
)

const (
	testRows    = 50
	testColumns = 26
)

type SpreadsheetTestCase struct {
	t           *testing.T
	name        string
	spreadsheet *Spreadsheet
	err         error
	skipped     bool
}

func NewSpreadsheetTestCase(t *testing.T, name string) *SpreadsheetTestCase {
	s, err := NewSpreadsheet(testRows, testColumns)
	require.NoError(t, err)
	return &SpreadsheetTestCase{
		t:           t,
		name:        name,
		spreadsheet: s,
	}
}

func (tc *SpreadsheetTestCase) Skip(reason string) *SpreadsheetTestCase {
	if !tc.skipped {
		tc.t.Skipf("%s: %s", tc.name, reason)
		tc.skipped = true
	}
	return tc
}

func (tc *SpreadsheetTestCase) address(name string) CellAddress {
	addr, ok := ParseCellName(name)
	require.True(tc.t, ok, "%s: bad cell name %s", tc.name, name)
	return addr
}

func (tc *SpreadsheetTestCase) Set(name string, text string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	addr := tc.address(name)
	tc.err = tc.spreadsheet.SetCellText(addr.Row, addr.Column, text)
	if tc.err != nil {
		tc.t.Errorf("%s: SetCellText(%s, %q) failed: %v", tc.name, name, text, tc.err)
	}
	return tc
}

// SetExpectingError sets text that must be rejected with an error matching
// target
func (tc *SpreadsheetTestCase) SetExpectingError(name string, text string, target error) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	addr := tc.address(name)
	err := tc.spreadsheet.SetCellText(addr.Row, addr.Column, text)
	if !errors.Is(err, target) {
		tc.t.Errorf("%s: SetCellText(%s, %q) = %v, want %v", tc.name, name, text, err, target)
	}
	return tc
}

func (tc *SpreadsheetTestCase) SetBackground(name string, argb uint32) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	addr := tc.address(name)
	tc.err = tc.spreadsheet.SetCellBackground(addr.Row, addr.Column, argb)
	if tc.err != nil {
		tc.t.Errorf("%s: SetCellBackground(%s) failed: %v", tc.name, name, tc.err)
	}
	return tc
}

func (tc *SpreadsheetTestCase) Edit(name string, text string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	addr := tc.address(name)
	tc.err = tc.spreadsheet.EditText(addr.Row, addr.Column, text)
	if tc.err != nil {
		tc.t.Errorf("%s: EditText(%s, %q) failed: %v", tc.name, name, text, tc.err)
	}
	return tc
}

func (tc *SpreadsheetTestCase) EditBackground(name string, argb uint32) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	addr := tc.address(name)
	tc.err = tc.spreadsheet.EditBackground(addr.Row, addr.Column, argb)
	if tc.err != nil {
		tc.t.Errorf("%s: EditBackground(%s) failed: %v", tc.name, name, tc.err)
	}
	return tc
}

func (tc *SpreadsheetTestCase) Undo(expectedDescription string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	description, ok, err := tc.spreadsheet.Undo()
	tc.err = err
	if !ok {
		tc.t.Errorf("%s: Undo() had nothing to undo", tc.name)
	}
	assert.Equal(tc.t, expectedDescription, description, "%s: Undo() description", tc.name)
	return tc
}

func (tc *SpreadsheetTestCase) Redo(expectedDescription string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	description, ok, err := tc.spreadsheet.Redo()
	tc.err = err
	if !ok {
		tc.t.Errorf("%s: Redo() had nothing to redo", tc.name)
	}
	assert.Equal(tc.t, expectedDescription, description, "%s: Redo() description", tc.name)
	return tc
}

func (tc *SpreadsheetTestCase) AssertCellEq(name string, expected string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	cell := tc.spreadsheet.GetCellByName(name)
	require.NotNil(tc.t, cell, "%s: no cell %s", tc.name, name)
	if cell.Value() != expected {
		tc.t.Errorf("%s: Cell %s = %q, want %q", tc.name, name, cell.Value(), expected)
	}
	return tc
}

func (tc *SpreadsheetTestCase) AssertCellText(name string, expected string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	cell := tc.spreadsheet.GetCellByName(name)
	require.NotNil(tc.t, cell, "%s: no cell %s", tc.name, name)
	if cell.Text() != expected {
		tc.t.Errorf("%s: Cell %s text = %q, want %q", tc.name, name, cell.Text(), expected)
	}
	return tc
}

func (tc *SpreadsheetTestCase) AssertCellErr(name string, kind CellErrorKind) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	cell := tc.spreadsheet.GetCellByName(name)
	require.NotNil(tc.t, cell, "%s: no cell %s", tc.name, name)
	if cell.Error() != kind {
		tc.t.Errorf("%s: Cell %s has error %q, want %q", tc.name, name, cell.Error(), kind)
	}
	if kind != CellErrorNone && cell.Value() != ErrorMapper[kind] {
		tc.t.Errorf("%s: Cell %s = %q, want tag %q", tc.name, name, cell.Value(), ErrorMapper[kind])
	}
	return tc
}

func (tc *SpreadsheetTestCase) AssertBackground(name string, expected uint32) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	cell := tc.spreadsheet.GetCellByName(name)
	require.NotNil(tc.t, cell, "%s: no cell %s", tc.name, name)
	if cell.Background() != expected {
		tc.t.Errorf("%s: Cell %s background = %08X, want %08X", tc.name, name, cell.Background(), expected)
	}
	return tc
}

// AssertDependsOn checks the exact set of cells name references
func (tc *SpreadsheetTestCase) AssertDependsOn(name string, expected ...string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	cell := tc.spreadsheet.GetCellByName(name)
	require.NotNil(tc.t, cell, "%s: no cell %s", tc.name, name)
	if diff := cmp.Diff(tc.addresses(expected), cell.DependsOn()); diff != "" {
		tc.t.Errorf("%s: Cell %s dependsOn mismatch (-want +got):\n%s", tc.name, name, diff)
	}
	return tc
}

// AssertDependents checks the exact set of cells referencing name
func (tc *SpreadsheetTestCase) AssertDependents(name string, expected ...string) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	cell := tc.spreadsheet.GetCellByName(name)
	require.NotNil(tc.t, cell, "%s: no cell %s", tc.name, name)
	if diff := cmp.Diff(tc.addresses(expected), cell.Dependents()); diff != "" {
		tc.t.Errorf("%s: Cell %s dependents mismatch (-want +got):\n%s", tc.name, name, diff)
	}
	return tc
}

// AssertEdgesSymmetric checks every edge of the grid is recorded on both of
// its cells
func (tc *SpreadsheetTestCase) AssertEdgesSymmetric() *SpreadsheetTestCase {
	if tc.skipped {
		return tc
	}
	assertEdgesSymmetric(tc.t, tc.spreadsheet)
	return tc
}

func (tc *SpreadsheetTestCase) AssertHistory(undoDepth, redoDepth int) *SpreadsheetTestCase {
	if tc.skipped || tc.err != nil {
		return tc
	}
	if got := tc.spreadsheet.UndoDepth(); got != undoDepth {
		tc.t.Errorf("%s: UndoDepth() = %d, want %d", tc.name, got, undoDepth)
	}
	if got := tc.spreadsheet.RedoDepth(); got != redoDepth {
		tc.t.Errorf("%s: RedoDepth() = %d, want %d", tc.name, got, redoDepth)
	}
	return tc
}

func (tc *SpreadsheetTestCase) ExpectAppError(expectedCode AppErrorCode) *SpreadsheetTestCase {
	if tc.skipped {
		return tc
	}
	if tc.err == nil {
		tc.t.Errorf("%s: Expected error with code %v, but got no error", tc.name, expectedCode)
		return tc
	}
	if code := ErrorCode(tc.err); code != expectedCode {
		tc.t.Errorf("%s: Got error code %v, want %v", tc.name, code, expectedCode)
	}
	tc.err = nil
	return tc
}

func (tc *SpreadsheetTestCase) addresses(names []string) []CellAddress {
	result := make([]CellAddress, 0, len(names))
	for _, name := range names {
		result = append(result, tc.address(name))
	}
	sortAddresses(result)
	return result
}

func (tc *SpreadsheetTestCase) End() {
}

func assertEdgesSymmetric(t *testing.T, s *Spreadsheet) {
	t.Helper()
	for row := 0; row < s.RowCount(); row++ {
		for col := 0; col < s.ColumnCount(); col++ {
			cell := s.GetCell(row, col)
			for addr, precedent := range cell.dependsOn {
				if _, ok := precedent.dependents[cell.address]; !ok {
					t.Errorf("%s depends on %s but is missing from its dependents", cell.Name(), addr)
				}
			}
			for addr, dependent := range cell.dependents {
				if _, ok := dependent.dependsOn[cell.address]; !ok {
					t.Errorf("%s lists dependent %s that does not depend on it", cell.Name(), addr)
				}
			}
		}
	}
}

func TestNewSpreadsheet(t *testing.T) {
	s, err := NewSpreadsheet(testRows, testColumns)
	require.NoError(t, err)
	require.Equal(t, 50, s.RowCount())
	require.Equal(t, 26, s.ColumnCount())

	cell := s.GetCell(0, 0)
	require.NotNil(t, cell)
	require.Equal(t, "A1", cell.Name())
	require.Equal(t, "", cell.Text())
	require.Equal(t, "", cell.Value())
	require.Equal(t, DefaultBackground, cell.Background())
	require.False(t, cell.HasError())
	require.Empty(t, cell.DependsOn())
	require.Empty(t, cell.Dependents())

	require.Equal(t, "Z50", s.GetCell(49, 25).Name())
	require.Nil(t, s.GetCell(50, 0))
	require.Nil(t, s.GetCell(0, 26))
	require.Nil(t, s.GetCell(-1, 0))
	require.Same(t, cell, s.GetCellByName("A1"))
	require.Nil(t, s.GetCellByName("A51"))
	require.Nil(t, s.GetCellByName("a1"))

	for _, tc := range []struct {
		rows, columns int
	}{
		{0, 26},
		{-1, 26},
		{50, 0},
		{50, 27},
	} {
		t.Run(fmt.Sprintf("%dx%d", tc.rows, tc.columns), func(t *testing.T) {
			_, err := NewSpreadsheet(tc.rows, tc.columns)
			require.Equal(t, InvalidArgument, ErrorCode(err))
		})
	}
}

func TestParseCellName(t *testing.T) {
	for _, tc := range []struct {
		name string
		want CellAddress
		ok   bool
	}{
		{"A1", CellAddress{Row: 0, Column: 0}, true},
		{"B3", CellAddress{Row: 2, Column: 1}, true},
		{"Z50", CellAddress{Row: 49, Column: 25}, true},
		{"Z100", CellAddress{Row: 99, Column: 25}, true},
		{"A0", CellAddress{Row: -1, Column: 0}, true},
		{"A", CellAddress{}, false},
		{"", CellAddress{}, false},
		{"1A", CellAddress{}, false},
		{"a1", CellAddress{}, false},
		{"AA1", CellAddress{}, false},
		{"A1B", CellAddress{}, false},
		{"A-1", CellAddress{}, false},
		{"A99999999999999999999", CellAddress{}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			addr, ok := ParseCellName(tc.name)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, addr)
			if ok && addr.Row >= 0 {
				require.Equal(t, tc.name, addr.Name())
			}
		})
	}
}

func TestCellValues(t *testing.T) {
	t.Run("Literals", func(t *testing.T) {
		NewSpreadsheetTestCase(t, "Text").
			Set("A1", "Hello").
			AssertCellEq("A1", "Hello").
			AssertCellText("A1", "Hello").
			End()

		NewSpreadsheetTestCase(t, "Number stays as typed").
			Set("A1", "5.50").
			AssertCellEq("A1", "5.50").
			End()

		NewSpreadsheetTestCase(t, "Empty").
			Set("A1", "Hello").
			Set("A1", "").
			AssertCellEq("A1", "").
			AssertCellText("A1", "").
			End()
	})

	t.Run("Formulas", func(t *testing.T) {
		NewSpreadsheetTestCase(t, "Arithmetic").
			Set("A1", "=1+2*3").
			AssertCellEq("A1", "7").
			AssertCellText("A1", "=1+2*3").
			End()

		NewSpreadsheetTestCase(t, "Parentheses and whitespace").
			Set("A1", "= (1 + 2) * 3 ").
			AssertCellEq("A1", "9").
			End()

		NewSpreadsheetTestCase(t, "Fraction").
			Set("A1", "=10/4").
			AssertCellEq("A1", "2.5").
			End()

		NewSpreadsheetTestCase(t, "Division by zero").
			Set("A1", "=1/0").
			Set("A2", "=0-1/0").
			Set("A3", "=0/0").
			AssertCellEq("A1", "+Inf").
			AssertCellEq("A2", "-Inf").
			AssertCellEq("A3", "NaN").
			End()

		NewSpreadsheetTestCase(t, "Reference").
			Set("A1", "5").
			Set("A2", "=A1*2").
			AssertCellEq("A2", "10").
			AssertDependsOn("A2", "A1").
			AssertDependents("A1", "A2").
			End()

		NewSpreadsheetTestCase(t, "Two references").
			Set("A1", "10").
			Set("B1", "20").
			Set("C1", "=A1+B1").
			AssertCellEq("C1", "30").
			AssertDependsOn("C1", "A1", "B1").
			End()

		NewSpreadsheetTestCase(t, "Repeated reference").
			Set("A1", "3").
			Set("B1", "=A1*A1+A1").
			AssertCellEq("B1", "12").
			AssertDependsOn("B1", "A1").
			End()

		NewSpreadsheetTestCase(t, "Empty and text cells read as zero").
			Set("A1", "hello").
			Set("B1", "=A1+C1+1").
			AssertCellEq("B1", "1").
			End()

		NewSpreadsheetTestCase(t, "Padded number").
			Set("A1", " 4 ").
			Set("B1", "=A1*2").
			AssertCellEq("B1", "8").
			End()

		NewSpreadsheetTestCase(t, "Infinite reference").
			Set("A1", "=1/0").
			Set("B1", "=A1-1").
			AssertCellEq("B1", "+Inf").
			End()
	})
}

func TestReferenceErrors(t *testing.T) {
	NewSpreadsheetTestCase(t, "Bad reference").
		Set("A1", "=Z100").
		AssertCellErr("A1", CellErrorBadReference).
		AssertCellEq("A1", "!(bad reference)").
		AssertCellText("A1", "=Z100").
		AssertDependsOn("A1").
		End()

	NewSpreadsheetTestCase(t, "Lowercase name").
		Set("A1", "=a1+1").
		AssertCellErr("A1", CellErrorBadReference).
		End()

	NewSpreadsheetTestCase(t, "Row zero").
		Set("B1", "=A0").
		AssertCellErr("B1", CellErrorBadReference).
		End()

	NewSpreadsheetTestCase(t, "Unknown name").
		Set("B1", "=Total*2").
		AssertCellErr("B1", CellErrorBadReference).
		End()

	NewSpreadsheetTestCase(t, "Self reference").
		Set("A1", "=A1").
		AssertCellErr("A1", CellErrorSelfReference).
		AssertCellEq("A1", "!(self reference)").
		AssertDependsOn("A1").
		AssertDependents("A1").
		End()

	NewSpreadsheetTestCase(t, "Earlier edges are removed on a bad reference").
		Set("B1", "1").
		Set("A1", "=B1+Z100").
		AssertCellErr("A1", CellErrorBadReference).
		AssertDependsOn("A1").
		AssertDependents("B1").
		AssertEdgesSymmetric().
		End()

	NewSpreadsheetTestCase(t, "Earlier edges are removed on a self reference").
		Set("B1", "1").
		Set("A1", "=B1+A1").
		AssertCellErr("A1", CellErrorSelfReference).
		AssertDependents("B1").
		End()

	NewSpreadsheetTestCase(t, "Error clears when fixed").
		Set("A1", "=A1").
		Set("A1", "=2+2").
		AssertCellErr("A1", CellErrorNone).
		AssertCellEq("A1", "4").
		End()

	NewSpreadsheetTestCase(t, "Error cells read as zero").
		Set("A1", "=Z100").
		Set("B1", "=A1+1").
		AssertCellEq("B1", "1").
		End()
}

func TestCircularReferences(t *testing.T) {
	NewSpreadsheetTestCase(t, "Pair").
		Set("A1", "=A2").
		Set("A2", "=A1").
		AssertCellErr("A2", CellErrorCircularReference).
		AssertCellEq("A2", "!(Circular reference)").
		AssertCellErr("A1", CellErrorCircularReference).
		AssertDependsOn("A2", "A1").
		AssertDependsOn("A1", "A2").
		AssertEdgesSymmetric().
		End()

	NewSpreadsheetTestCase(t, "Longer cycle").
		Set("A1", "=C1+1").
		Set("B1", "=A1+1").
		Set("C1", "=B1+1").
		AssertCellErr("C1", CellErrorCircularReference).
		AssertEdgesSymmetric().
		End()

	NewSpreadsheetTestCase(t, "Breaking the cycle clears both errors").
		Set("A1", "=A2").
		Set("A2", "=A1").
		Set("A1", "5").
		AssertCellErr("A1", CellErrorNone).
		AssertCellErr("A2", CellErrorNone).
		AssertCellEq("A1", "5").
		AssertCellEq("A2", "5").
		AssertDependsOn("A1").
		AssertDependents("A1", "A2").
		AssertEdgesSymmetric().
		End()

	NewSpreadsheetTestCase(t, "Only the circular edge is kept").
		Set("B1", "1").
		Set("A1", "=A2").
		Set("A2", "=B1+A1").
		AssertCellErr("A2", CellErrorCircularReference).
		AssertDependents("B1").
		AssertEdgesSymmetric().
		End()
}

func TestUpdateAndRecalculation(t *testing.T) {
	NewSpreadsheetTestCase(t, "Direct dependent").
		Set("A1", "5").
		Set("A2", "=A1*2").
		Set("A1", "10").
		AssertCellEq("A2", "20").
		End()

	NewSpreadsheetTestCase(t, "Chain").
		Set("A1", "1").
		Set("A2", "=A1+1").
		Set("A3", "=A2+1").
		Set("A4", "=A3+1").
		Set("A1", "10").
		AssertCellEq("A4", "13").
		End()

	NewSpreadsheetTestCase(t, "Diamond").
		Set("A1", "2").
		Set("B1", "=A1*2").
		Set("C1", "=A1*3").
		Set("D1", "=B1+C1").
		AssertCellEq("D1", "10").
		Set("A1", "3").
		AssertCellEq("B1", "6").
		AssertCellEq("C1", "9").
		AssertCellEq("D1", "15").
		AssertEdgesSymmetric().
		End()

	NewSpreadsheetTestCase(t, "Replacing a formula drops old edges").
		Set("A1", "1").
		Set("B1", "2").
		Set("C1", "=A1").
		Set("C1", "=B1").
		AssertDependents("A1").
		AssertDependents("B1", "C1").
		Set("A1", "100").
		AssertCellEq("C1", "2").
		End()

	NewSpreadsheetTestCase(t, "Replacing a formula with text").
		Set("A1", "1").
		Set("C1", "=A1").
		Set("C1", "plain").
		AssertDependents("A1").
		AssertDependsOn("C1").
		AssertCellEq("C1", "plain").
		End()

	NewSpreadsheetTestCase(t, "Dependents see a referenced error").
		Set("A1", "1").
		Set("B1", "=A1+1").
		Set("C1", "=B1+1").
		Set("B1", "=Z100").
		AssertCellErr("B1", CellErrorBadReference).
		AssertCellEq("C1", "1").
		End()

	s, err := NewSpreadsheet(testRows, testColumns)
	require.NoError(t, err)
	require.NoError(t, s.SetCellText(0, 0, "1"))
	require.NoError(t, s.SetCellText(0, 1, "=A1"))
	require.NoError(t, s.SetCellText(0, 2, "=B1"))
	require.NoError(t, s.SetCellText(1, 0, "=A1"))
	affected, err := s.AffectedCells(0, 0)
	require.NoError(t, err)
	require.Equal(t, []CellAddress{{0, 1}, {0, 2}, {1, 0}}, affected)
}

func TestParseFailures(t *testing.T) {
	NewSpreadsheetTestCase(t, "Unsupported token").
		Set("A1", "7").
		SetExpectingError("A1", "=4%2", expression.ErrUnsupportedToken).
		AssertCellText("A1", "7").
		AssertCellEq("A1", "7").
		End()

	NewSpreadsheetTestCase(t, "Mismatched parentheses").
		SetExpectingError("A1", "=((2+5))-2(2+3))", expression.ErrMismatchedParentheses).
		AssertCellText("A1", "").
		End()

	NewSpreadsheetTestCase(t, "Malformed").
		SetExpectingError("A1", "=", expression.ErrMalformedExpression).
		SetExpectingError("A1", "=1+", expression.ErrMalformedExpression).
		End()

	NewSpreadsheetTestCase(t, "Old references are dropped").
		Set("B1", "3").
		Set("A1", "=B1").
		SetExpectingError("A1", "=B1%2", expression.ErrUnsupportedToken).
		AssertCellText("A1", "=B1").
		AssertDependsOn("A1").
		AssertDependents("B1").
		AssertEdgesSymmetric().
		End()
}

func TestBackground(t *testing.T) {
	NewSpreadsheetTestCase(t, "Set").
		SetBackground("B2", 0xFF00FF00).
		AssertBackground("B2", 0xFF00FF00).
		AssertBackground("A1", DefaultBackground).
		End()

	NewSpreadsheetTestCase(t, "Overwrite").
		SetBackground("A1", 0xFF000000).
		SetBackground("A1", 0x80FF0000).
		AssertBackground("A1", 0x80FF0000).
		End()

	tc := NewSpreadsheetTestCase(t, "Out of range coordinates")
	tc.err = tc.spreadsheet.SetCellBackground(testRows, 0, 0xFF000000)
	tc.ExpectAppError(OutOfRange)
	tc.err = tc.spreadsheet.SetCellText(0, testColumns, "x")
	tc.ExpectAppError(OutOfRange)
	tc.End()
}

func TestListeners(t *testing.T) {
	type change struct {
		cell     string
		property ChangeProperty
	}
	var changes []change
	listener := func(cell *Cell, property ChangeProperty) {
		changes = append(changes, change{cell.Name(), property})
	}

	s, err := NewSpreadsheet(testRows, testColumns, WithListener(listener))
	require.NoError(t, err)

	require.NoError(t, s.SetCellText(0, 0, "1"))
	require.NoError(t, s.SetCellText(0, 1, "=A1"))
	require.NoError(t, s.SetCellText(0, 0, "2"))
	require.NoError(t, s.SetCellBackground(0, 0, 0xFF0000FF))
	// unchanged background is not a change
	require.NoError(t, s.SetCellBackground(0, 0, 0xFF0000FF))

	require.Equal(t, []change{
		{"A1", PropertyValue},
		{"B1", PropertyValue},
		{"A1", PropertyValue},
		{"B1", PropertyValue},
		{"A1", PropertyBackground},
	}, changes)

	changes = nil
	var second int
	s.AddListener(func(*Cell, ChangeProperty) { second++ })
	require.NoError(t, s.SetCellText(1, 1, "x"))
	require.Len(t, changes, 1)
	require.Equal(t, 1, second)
}

func TestUndoRedo(t *testing.T) {
	NewSpreadsheetTestCase(t, "Text round trip").
		Edit("A1", "Hello").
		AssertHistory(1, 0).
		Undo("cell text change").
		AssertCellText("A1", "").
		AssertCellEq("A1", "").
		AssertHistory(0, 1).
		Redo("cell text change").
		AssertCellText("A1", "Hello").
		AssertHistory(1, 0).
		End()

	NewSpreadsheetTestCase(t, "Background").
		EditBackground("A1", 0xFF00FF00).
		Undo("changing cell background color").
		AssertBackground("A1", DefaultBackground).
		Redo("changing cell background color").
		AssertBackground("A1", 0xFF00FF00).
		End()

	NewSpreadsheetTestCase(t, "Multiple edits unwind in order").
		Edit("A1", "1").
		Edit("A1", "2").
		EditBackground("A1", 0xFFFF0000).
		Undo("changing cell background color").
		AssertCellText("A1", "2").
		Undo("cell text change").
		AssertCellText("A1", "1").
		Undo("cell text change").
		AssertCellText("A1", "").
		AssertHistory(0, 3).
		End()

	NewSpreadsheetTestCase(t, "Fresh edit clears redo").
		Edit("A1", "1").
		Edit("A1", "2").
		Undo("cell text change").
		AssertHistory(1, 1).
		Edit("B1", "3").
		AssertHistory(2, 0).
		End()

	NewSpreadsheetTestCase(t, "Undo recalculates dependents").
		Edit("A1", "5").
		Edit("B1", "=A1*2").
		Edit("A1", "7").
		AssertCellEq("B1", "14").
		Undo("cell text change").
		AssertCellEq("A1", "5").
		AssertCellEq("B1", "10").
		Redo("cell text change").
		AssertCellEq("B1", "14").
		AssertEdgesSymmetric().
		End()

	NewSpreadsheetTestCase(t, "Undoing a formula removes its edges").
		Edit("A1", "5").
		Edit("B1", "=A1*2").
		Undo("cell text change").
		AssertCellText("B1", "").
		AssertDependents("A1").
		AssertDependsOn("B1").
		AssertEdgesSymmetric().
		End()

	s, err := NewSpreadsheet(testRows, testColumns)
	require.NoError(t, err)
	_, ok, err := s.Undo()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = s.Redo()
	require.NoError(t, err)
	require.False(t, ok)
	_, ok = s.PeekUndo()
	require.False(t, ok)

	require.NoError(t, s.EditBackground(0, 0, 0xFF00FF00))
	description, ok := s.PeekUndo()
	require.True(t, ok)
	require.Equal(t, "changing cell background color", description)
	_, _, err = s.Undo()
	require.NoError(t, err)
	description, ok = s.PeekRedo()
	require.True(t, ok)
	require.Equal(t, "changing cell background color", description)
}

func TestUndoRestoresExactState(t *testing.T) {
	s, err := NewSpreadsheet(testRows, testColumns)
	require.NoError(t, err)
	require.NoError(t, s.EditText(0, 0, "5"))
	require.NoError(t, s.EditText(0, 1, "=A1*2"))
	require.NoError(t, s.EditText(0, 2, "=A1+B1"))
	require.NoError(t, s.EditBackground(0, 0, 0xFF112233))

	capture := func() []Snapshot {
		var result []Snapshot
		for col := 0; col < 3; col++ {
			snapshot, err := s.Snapshot(0, col, ChangeText)
			require.NoError(t, err)
			result = append(result, snapshot)
		}
		return result
	}

	require.NoError(t, s.EditText(0, 0, "=4*4"))
	after := capture()

	_, ok, err := s.Undo()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "15", s.GetCell(0, 2).Value())
	require.Equal(t, uint32(0xFF112233), s.GetCell(0, 0).Background())

	_, ok, err = s.Redo()
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(after, capture()); diff != "" {
		t.Errorf("state after undo+redo mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "48", s.GetCell(0, 2).Value())
	assertEdgesSymmetric(t, s)
}

func TestPushUndoIsIndependentOfCaller(t *testing.T) {
	s, err := NewSpreadsheet(testRows, testColumns)
	require.NoError(t, err)
	require.NoError(t, s.SetCellText(0, 0, "1"))
	require.NoError(t, s.SetCellText(0, 1, "=A1"))

	snapshot, err := s.Snapshot(0, 0, ChangeText)
	require.NoError(t, err)
	require.Equal(t, []CellAddress{{0, 1}}, snapshot.Dependents)

	s.PushUndo(snapshot, ChangeText.String())
	snapshot.Dependents[0] = CellAddress{Row: 9, Column: 9}
	snapshot.Text = "changed"

	require.NoError(t, s.SetCellText(0, 0, "2"))
	_, _, err = s.Undo()
	require.NoError(t, err)
	require.Equal(t, "1", s.GetCell(0, 0).Text())
	require.Equal(t, []CellAddress{{0, 1}}, s.GetCell(0, 0).Dependents())

	_, err = s.Snapshot(testRows, 0, ChangeText)
	require.Equal(t, OutOfRange, ErrorCode(err))
}

func TestRandomEditsKeepEdgesSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s, err := NewSpreadsheet(3, 3)
	require.NoError(t, err)

	// one row past the grid so some references are bad
	name := func() string {
		return CellName(rng.Intn(4), rng.Intn(3))
	}
	for i := 0; i < 500; i++ {
		row, col := rng.Intn(3), rng.Intn(3)
		var text string
		switch rng.Intn(4) {
		case 0:
			text = fmt.Sprint(rng.Intn(100))
		case 1:
			text = "=" + name()
		case 2:
			text = "=" + name() + "+" + name()
		default:
			text = "=" + name() + "*2-" + name()
		}
		require.NoError(t, s.EditText(row, col, text))
		if rng.Intn(5) == 0 {
			_, _, err := s.Undo()
			require.NoError(t, err)
		}
		if rng.Intn(7) == 0 {
			_, _, err := s.Redo()
			require.NoError(t, err)
		}
	}
	assertEdgesSymmetric(t, s)
}
