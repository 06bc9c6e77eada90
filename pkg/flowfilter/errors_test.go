package flowfilter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIs(t *testing.T) {
	err := newError(DuplicateIndex, uint16(7), "Duplicate flow filter index: %d", 7)
	assert.True(t, errors.Is(err, ErrDuplicateIndex))
	assert.False(t, errors.Is(err, ErrInvalidIndex))

	wrapped := fmt.Errorf("PUT vtn_1: %w", err)
	assert.True(t, errors.Is(wrapped, ErrDuplicateIndex))
	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, DuplicateIndex, kind, "be the same.")

	_, ok = KindOf(errors.New("other"))
	assert.False(t, ok)
}

func TestErrorKindNames(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 14)
	assert.Equal(t, "MissingIndex", kinds[0].String(), "be the same.")
	assert.Equal(t, "SelfRedirection", SelfRedirection.String(), "be the same.")
	assert.Equal(t, "UNKNOWN (0)", ErrorKind(0).String(), "be the same.")
}
