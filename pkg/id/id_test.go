package id

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsSortable(t *testing.T) {
	a := New()
	b := New()
	assert.Len(t, a, 26)
	assert.Less(t, a, b)
}

func TestNewAtTime(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewAt(at)

	got, err := Time(s)
	require.NoError(t, err)
	assert.True(t, got.Equal(at))

	_, err = Time("not-a-ulid")
	assert.Error(t, err)
}
