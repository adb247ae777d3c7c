package finder

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

// MTFEntry is the MTF calibration of one filelist.
type MTFEntry struct {
	File       string
	OrigAngpix float64
}

// ParseMTFInfo reads one entry per line of exactly two fields: the MTF
// filename and the original pixel size. Other lines are ignored.
func ParseMTFInfo(r io.Reader) ([]MTFEntry, error) {
	var entries []MTFEntry
	sc := bufio.NewScanner(r)
	for lineNo := 1; sc.Scan(); lineNo++ {
		words := strings.Fields(sc.Text())
		if len(words) != 2 {
			continue
		}
		angpix, err := strconv.ParseFloat(words[1], 64)
		if err != nil {
			return nil, fault.Format("mtf info line %d: pixel size %q is not a number", lineNo, words[1])
		}
		entries = append(entries, MTFEntry{File: words[0], OrigAngpix: angpix})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fault.Format("mtf info has no entries")
	}
	return entries, nil
}

func ReadMTFInfo(path string) ([]MTFEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fault.Format("%s does not exist", path)
		}
		return nil, err
	}
	defer f.Close()
	return ParseMTFInfo(f)
}
