package errors

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("sentinel error")
	require.NotErrorIs(t, err, sentinel)
	wrapped := Wrap(sentinel, "more context")
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "more context: sentinel error", wrapped.Error())

	// Ensure log values are coming through.
	var annotated AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source.
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestAnnotatedError_join(t *testing.T) {
	first := NewSentinel("first")
	second := NewSentinel("second")
	joined := Wrap(Join(first, second), "both failed")
	require.ErrorIs(t, joined, first)
	require.ErrorIs(t, joined, second)
}
