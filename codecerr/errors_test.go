package codecerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Kind:   KindUnresolvedReference,
				Stage:  StageExports,
				Offset: 0x1a4,
				Path:   []string{"Exports", "3"},
				Detail: "class index -9 outside import table",
			},
			contains: []string{"[exports @0x1a4]", "unresolved_reference", "Exports.3", "class index -9"},
		},
		{
			name:     "no position",
			err:      &Error{Kind: KindUnknownType, Offset: NoOffset},
			contains: []string{"unknown_type"},
		},
		{
			name: "with cause",
			err: &Error{
				Kind:   KindStructural,
				Offset: 8,
				Cause:  errors.New("short buffer"),
			},
			contains: []string{"[@0x8]", "structural", "caused by: short buffer"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			msg := tt.err.Error()
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
		})
	}
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := Structural(12, "bad tag %x", 0xdead)
	assert.ErrorIs(t, err, ErrStructural)
	assert.NotErrorIs(t, err, ErrUnknownType)

	staged := WithStage(err, StageHeader, 0)
	assert.ErrorIs(t, staged, ErrStructural)
	assert.ErrorIs(t, staged, &Error{Kind: KindStructural, Stage: StageHeader})
	assert.NotErrorIs(t, staged, &Error{Kind: KindStructural, Stage: StageNames})

	wrapped := fmt.Errorf("decode: %w", staged)
	assert.ErrorIs(t, wrapped, ErrStructural)
}

func TestWithStage(t *testing.T) {
	t.Parallel()

	t.Run("keeps original offset", func(t *testing.T) {
		t.Parallel()
		err := WithStage(Structural(40, "x"), StageImports, 99)
		var ce *Error
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, StageImports, ce.Stage)
		assert.Equal(t, int64(40), ce.Offset)
	})

	t.Run("fills missing offset", func(t *testing.T) {
		t.Parallel()
		err := WithStage(New(KindUnknownType).Build(), StagePayloads, 99)
		var ce *Error
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, int64(99), ce.Offset)
	})

	t.Run("does not restamp", func(t *testing.T) {
		t.Parallel()
		first := WithStage(Structural(1, "x"), StageNames, 1)
		second := WithStage(first, StageExports, 2)
		var ce *Error
		require.ErrorAs(t, second, &ce)
		assert.Equal(t, StageNames, ce.Stage)
	})

	t.Run("wraps foreign errors", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("boom")
		err := WithStage(cause, StageHeader, 4)
		assert.ErrorIs(t, err, ErrStructural)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, WithStage(nil, StageHeader, 0))
	})
}

func TestWithPath(t *testing.T) {
	t.Parallel()

	err := WithPath(WithPath(UnknownType(0, "property type", "FooProperty"), "Value"), "Properties", "2")
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"Properties", "2", "Value"}, ce.Path)
}

func TestRecoverable(t *testing.T) {
	t.Parallel()

	assert.True(t, Recoverable(UnknownType(0, "class", "X")))
	assert.True(t, Recoverable(UnresolvedReference(0, "name", 5, 2)))
	assert.False(t, Recoverable(SizeMismatch("export 1", 4, 5)))
	assert.False(t, Recoverable(errors.New("io")))
}
