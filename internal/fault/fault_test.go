package fault

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	test := []struct {
		err  error
		kind error
		msg  string
	}{
		{Format("line %d", 3), ErrFormat, "format error: line 3"},
		{Consistency("group %d", 2), ErrConsistency, "consistency error: group 2"},
		{MissingInput("image size"), ErrMissingInput, "missing input: image size"},
		{Postcondition("row %d", 0), ErrPostcondition, "postcondition violated: row 0"},
	}
	for _, tt := range test {
		assert.True(t, errors.Is(tt.err, tt.kind))
		assert.EqualError(t, tt.err, tt.msg)
	}
	assert.False(t, errors.Is(Format("x"), ErrConsistency))
}
