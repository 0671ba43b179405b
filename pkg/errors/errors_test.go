package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeStatus, 503, "unexpected status for %s", "search")
	assert.Equal(t, "status error (code 503): unexpected status for search", err.Error())
}

func TestTypeOf(t *testing.T) {
	wrapped := fmt.Errorf("page 3: %w", New(ErrorTypeRateLimit, 429, "slow down"))
	assert.Equal(t, ErrorTypeRateLimit, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(nil))
}

func TestIsRetryable(t *testing.T) {
	for _, tt := range []struct {
		errType ErrorType
		want    bool
	}{
		{ErrorTypeNetwork, true},
		{ErrorTypeStatus, true},
		{ErrorTypeRateLimit, true},
		{ErrorTypeNotFound, true},
		{ErrorTypeParsing, true},
		{ErrorTypeAPI, false},
		{ErrorTypeUnknown, false},
	} {
		assert.Equal(t, tt.want, IsRetryable(tt.errType), string(tt.errType))
	}
}

func TestStatusType(t *testing.T) {
	assert.Equal(t, ErrorTypeNotFound, StatusType(404))
	assert.Equal(t, ErrorTypeRateLimit, StatusType(429))
	assert.Equal(t, ErrorTypeStatus, StatusType(500))
	assert.Equal(t, ErrorTypeStatus, StatusType(403))
}
