package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := NotFound("booking", "b1")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))

	wrapped := fmt.Errorf("update: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestPaymentErrorsAreDistinguishable(t *testing.T) {
	declined := PaymentDeclined("insufficient funds")
	unreachable := PaymentGatewayUnreachable(errors.New("dial tcp: timeout"))

	assert.True(t, errors.Is(declined, ErrPaymentDeclined))
	assert.False(t, errors.Is(declined, ErrPaymentGatewayUnreachable))
	assert.True(t, errors.Is(unreachable, ErrPaymentGatewayUnreachable))
	assert.False(t, errors.Is(unreachable, ErrPaymentDeclined))
	assert.True(t, unreachable.Retryable)
	assert.False(t, declined.Retryable)
}

func TestInvalidTransitionError(t *testing.T) {
	err := &InvalidTransitionError{From: "completed", To: "pending"}
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Contains(t, err.Error(), "none (terminal)")

	err = &InvalidTransitionError{From: "pending", To: "completed", Allowed: []string{"confirmed", "cancelled"}}
	assert.Contains(t, err.Error(), "confirmed, cancelled")

	code, ok := CodeOf(fmt.Errorf("wrap: %w", err))
	assert.True(t, ok)
	assert.Equal(t, CodeInvalidTransition, code)
}

func TestCodeOf(t *testing.T) {
	_, ok := CodeOf(errors.New("plain"))
	assert.False(t, ok)

	code, ok := CodeOf(SlotUnavailable("k1", "2024-05-20", "10:00", "13:00"))
	assert.True(t, ok)
	assert.Equal(t, CodeSlotUnavailable, code)
}
