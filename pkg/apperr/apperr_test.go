package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "not found", err: NotFound("user not found"), want: KindNotFound},
		{name: "wrapped conflict", err: fmt.Errorf("create: %w", Conflict("relationship already exists")), want: KindConflict},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "internal", err: Internal(errors.New("db down"), "query failed"), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("accept: %w", NotFound("invalid request"))

	assert.True(t, errors.Is(err, NotFound("")))
	assert.True(t, errors.Is(err, NotFound("invalid request")))
	assert.False(t, errors.Is(err, NotFound("user not found")))
	assert.False(t, errors.Is(err, Conflict("")))
}

func TestInternalKeepsCauseButHidesIt(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause, "failed to load friendships")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load friendships", MessageOf(err))
	assert.Equal(t, "internal server error", MessageOf(cause))
}

func TestInternalWithoutMessageUsesStaticText(t *testing.T) {
	err := Internal(errors.New("dial tcp: timeout"), "")
	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
}
