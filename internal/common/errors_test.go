package common

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserError(t *testing.T) {
	t.Run("formats message with cause", func(t *testing.T) {
		err := NewUserError("could not open the database", errors.New("disk full"))
		assert.Equal(t, "could not open the database: disk full", err.Error())
	})

	t.Run("formats message without cause", func(t *testing.T) {
		err := &UserError{UserMessage: "something went wrong"}
		assert.Equal(t, "something went wrong", err.Error())
	})

	t.Run("unwraps to the cause", func(t *testing.T) {
		err := NewUserError("could not load config", ErrMissingConfig)
		assert.True(t, errors.Is(err, ErrMissingConfig))

		var userErr *UserError
		assert.True(t, errors.As(err, &userErr))
		assert.Equal(t, "could not load config", userErr.UserMessage)
	})
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", ErrRateLimit, true},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"retryable wrapper", &RetryableError{Err: errors.New("transient"), Retryable: true}, true},
		{"non retryable wrapper", &RetryableError{Err: errors.New("permanent"), Retryable: false}, false},
		{"plain error", errors.New("boom"), false},
		{"not found", ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}
