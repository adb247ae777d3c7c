// Package star reads and writes the loop blocks of RELION STAR files.
package star

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

const (
	labelPrefix = "_rln"
	loopMarker  = "loop_"
	fieldWidth  = 12
)

// Decode reads the loop block labelled block. An empty block means r is
// already positioned on the block's data_ line.
//
// Labels are the consecutive _rln lines after loop_. The first line that is
// not a label is the first row, and rows continue until a blank line or the
// end of the stream.
func Decode(r *Reader, block string) (*Table, error) {
	if block != "" && !r.seek(block) {
		return nil, r.notFound(block)
	}
	if !r.seek(loopMarker) {
		return nil, r.notFound(loopMarker)
	}

	t := new(Table)
	var line string
	more := r.next()
	for ; more; more = r.next() {
		line = strings.TrimSpace(r.line)
		if !strings.HasPrefix(line, labelPrefix) {
			break
		}
		t.Columns = append(t.Columns, strings.Fields(line)[0])
	}

	for more && line != "" {
		fields := strings.Fields(line)
		if len(fields) != len(t.Columns) {
			return nil, fault.Format("line %d: %d values for %d columns", r.lineNo, len(fields), len(t.Columns))
		}
		t.Rows = append(t.Rows, fields)
		if more = r.next(); more {
			line = strings.TrimSpace(r.line)
		}
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("read line %d: %w", r.lineNo+1, err)
	}
	return t, nil
}

// Encode writes t as a loop block named block. Values shorter than 12
// characters are right-justified to 12. Rows must match the column count and
// values must be non-empty single tokens, so that Decode reads them back.
func Encode(w io.Writer, t *Table, block string) error {
	if err := checkEncodable(t); err != nil {
		return fmt.Errorf("%s: %w", block, err)
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "\n# version %d\n\n%s\n\n%s\n", VersionOutput, block, loopMarker)
	for i, col := range t.Columns {
		fmt.Fprintf(bw, "%s #%d\n", col, i+1)
	}
	for _, row := range t.Rows {
		for i, v := range row {
			if i > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%*s", fieldWidth, v)
		}
		bw.WriteByte('\n')
	}
	bw.WriteByte('\n')
	return bw.Flush()
}

func checkEncodable(t *Table) error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fault.Format("row %d has %d values for %d columns", i+1, len(row), len(t.Columns))
		}
		for j, v := range row {
			if v == "" || strings.ContainsFunc(v, unicode.IsSpace) {
				return fault.Format("row %d: %s value %q is not a single token", i+1, t.Columns[j], v)
			}
		}
	}
	return nil
}
