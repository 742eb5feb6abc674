package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	apperrors "github.com/target/programme-portal/internal/errors"
)

type customErr struct{}

func (customErr) Error() string { return "custom" }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("lookup: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "canceled"},
		{"app error", fmt.Errorf("x: %w", apperrors.Unavailable("db down", errors.New("boom"))), "app_unavailable"},
		{"custom type", fmt.Errorf("wrap: %w", customErr{}), "errors_customerr"},
		{"plain", errors.New("plain"), "errors_errorstring"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
