package spreadsheet

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// document is the XML layout of a saved spreadsheet:
//
//	<spreadsheet>
//	  <cell name="A1">
//	    <bgcolor>FF00FF00</bgcolor>
//	    <text>=B1*2</text>
//	  </cell>
//	</spreadsheet>
type document struct {
	XMLName xml.Name       `xml:"spreadsheet"`
	Cells   []documentCell `xml:"cell"`
}

type documentCell struct {
	Name       string `xml:"name,attr"`
	Background string `xml:"bgcolor,omitempty"`
	Text       string `xml:"text,omitempty"`
}

// Save writes every non-default cell as indented XML, row-major. the
// background is written only when it differs from the default, the text
// only when it is not empty.
func (s *Spreadsheet) Save(w io.Writer) error {
	doc := document{}
	for _, cell := range s.NonDefaultCells() {
		entry := documentCell{Name: cell.Name(), Text: cell.text}
		if cell.background != DefaultBackground {
			entry.Background = formatBackground(cell.background)
		}
		doc.Cells = append(doc.Cells, entry)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "writing xml header")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "encoding spreadsheet")
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "encoding spreadsheet")
	}
	s.logger.Debug("saved spreadsheet", "cells", len(doc.Cells))
	return nil
}

// Load replaces the whole sheet with the cells read from r. every cell and
// both history stacks are reset first; each entry's background is applied,
// then its text goes through the normal recalculation. entries with an
// unknown name, an unreadable color or a formula that does not parse are
// skipped and reported together once the rest has loaded.
func (s *Spreadsheet) Load(r io.Reader) error {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return errors.Wrap(err, "decoding spreadsheet")
	}

	s.clear()

	var errs error
	loaded := 0
	for i, entry := range doc.Cells {
		cell := s.GetCellByName(entry.Name)
		if cell == nil {
			s.logger.Warn("skipping cell with unknown name", "entry", i, "name", entry.Name)
			errs = errors.CombineErrors(errs, NewApplicationError(NotFound,
				fmt.Sprintf("entry %d: no cell named %q", i, entry.Name)))
			continue
		}

		if entry.Background != "" {
			argb, err := parseBackground(entry.Background)
			if err != nil {
				s.logger.Warn("skipping unreadable background", "cell", cell.Name(), "bgcolor", entry.Background)
				errs = errors.CombineErrors(errs, errors.Wrapf(err, "cell %s", cell.Name()))
			} else {
				s.setBackground(cell, argb)
			}
		}

		if entry.Text != "" {
			if err := s.assignText(cell, entry.Text); err != nil {
				s.logger.Warn("skipping unparsable text", "cell", cell.Name(), "text", entry.Text)
				errs = errors.CombineErrors(errs, err)
				continue
			}
		}
		loaded++
	}

	s.logger.Debug("loaded spreadsheet", "entries", len(doc.Cells), "loaded", loaded)
	return errs
}

// formatBackground renders an ARGB color as eight uppercase hex digits
func formatBackground(argb uint32) string {
	return fmt.Sprintf("%08X", argb)
}

// parseBackground reads an ARGB color from hex. six digits are an opaque
// RGB color.
func parseBackground(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if len(s) == 6 {
		s = "FF" + s
	}
	if len(s) != 8 {
		return 0, errors.Newf("bgcolor %q is not 6 or 8 hex digits", s)
	}
	argb, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "bgcolor %q", s)
	}
	return uint32(argb), nil
}
