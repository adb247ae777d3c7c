package membership

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

const (
	colFilename      = "filename"
	colFilelistGroup = "filelist_group"
	colFoilhole      = "foilhole"
	colShiftX        = "shift_x"
	colShiftY        = "shift_y"
	colDate          = "date"
	colTime          = "time"
	colMTFFile       = "mtf_file"
	colOrigAngpix    = "orig_angpix"
	colOpticsGroup   = "optics_group"
)

var requiredColumns = []string{
	colFilename, colFilelistGroup, colFoilhole, colShiftX, colShiftY, colDate, colTime, colOpticsGroup,
}

// Header returns the CSV header for t.
func (t Table) Header() []string {
	h := []string{colFilename, colFilelistGroup, colFoilhole, colShiftX, colShiftY, colDate, colTime}
	if t.HasMTF {
		h = append(h, colMTFFile, colOrigAngpix)
	}
	return append(h, colOpticsGroup)
}

func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return err
	}
	for _, r := range t.Rows {
		rec := []string{
			r.Filename,
			strconv.Itoa(r.FilelistGroup),
			strconv.Itoa(r.Foilhole),
			strconv.Itoa(r.ShiftX),
			strconv.Itoa(r.ShiftY),
			strconv.Itoa(r.Date),
			r.Time,
		}
		if t.HasMTF {
			rec = append(rec, r.MTFFile, strconv.FormatFloat(r.OrigAngpix, 'f', -1, 64))
		}
		rec = append(rec, strconv.Itoa(r.OpticsGroup))
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a membership file. Columns are located by header name, so
// their order does not matter.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Table{}, fault.Format("membership file is empty")
		}
		return Table{}, fault.Format("membership header: %v", err)
	}
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.TrimSpace(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := pos[c]; !ok {
			return Table{}, fault.Format("membership file has no %s column", c)
		}
	}
	_, hasMTF := pos[colMTFFile]
	_, hasAngpix := pos[colOrigAngpix]
	if hasMTF != hasAngpix {
		return Table{}, fault.Format("membership file needs both %s and %s columns", colMTFFile, colOrigAngpix)
	}

	t := Table{HasMTF: hasMTF}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Table{}, fault.Format("membership line %d: %v", line, err)
		}
		p := recordParser{rec: rec, pos: pos}
		row := Row{
			Filename:      p.text(colFilename),
			FilelistGroup: p.atoi(colFilelistGroup),
			Foilhole:      p.atoi(colFoilhole),
			ShiftX:        p.atoi(colShiftX),
			ShiftY:        p.atoi(colShiftY),
			Date:          p.atoi(colDate),
			Time:          p.text(colTime),
			OpticsGroup:   p.atoi(colOpticsGroup),
		}
		if hasMTF {
			row.MTFFile = p.text(colMTFFile)
			row.OrigAngpix = p.atof(colOrigAngpix)
		}
		if p.err != nil {
			return Table{}, fault.Format("membership line %d: %v", line, p.err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// recordParser keeps the first conversion error so a row can be read in one
// expression.
type recordParser struct {
	rec []string
	pos map[string]int
	err error
}

func (p *recordParser) text(col string) string {
	return strings.TrimSpace(p.rec[p.pos[col]])
}

func (p *recordParser) atoi(col string) int {
	v, err := strconv.Atoi(p.text(col))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return v
}

func (p *recordParser) atof(col string) float64 {
	v, err := strconv.ParseFloat(p.text(col), 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", col, err)
	}
	return v
}

func WriteCSVFile(path string, t Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ReadCSVFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Table{}, fault.Format("%s does not exist", path)
		}
		return Table{}, err
	}
	defer f.Close()
	return ReadCSV(f)
}
