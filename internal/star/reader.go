package star

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kttn8769/relion-optics-group-assigner/internal/fault"
)

const maxLineSize = 16 << 20

// Reader walks a STAR stream line by line. Consecutive Decode calls share
// one Reader so that each block is read from where the previous one stopped.
type Reader struct {
	sc     *bufio.Scanner
	line   string
	lineNo int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	return &Reader{sc: sc}
}

func (r *Reader) next() bool {
	if !r.sc.Scan() {
		return false
	}
	r.line = r.sc.Text()
	r.lineNo++
	return true
}

// seek advances to the first line whose trimmed text starts with prefix.
func (r *Reader) seek(prefix string) bool {
	for r.next() {
		if strings.HasPrefix(strings.TrimSpace(r.line), prefix) {
			return true
		}
	}
	return false
}

// notFound reports a marker that the stream ran out before reaching.
func (r *Reader) notFound(marker string) error {
	if err := r.sc.Err(); err != nil {
		return fmt.Errorf("read line %d: %w", r.lineNo+1, err)
	}
	return fault.Format("%s not found", marker)
}
