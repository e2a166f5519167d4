package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianir/capcall_backend/internal/utils/pagination"
)

func TestEncodeDecodeToken_RoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 4, 2, 9, 30, 15, 123456789, time.UTC)
	id := "call-abc-123"

	token := pagination.EncodeToken(createdAt, id)
	gotTime, gotID, err := pagination.DecodeToken(token)

	require.NoError(t, err)
	assert.True(t, gotTime.Equal(createdAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeToken_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not base64", "!!!not-base64!!!"},
		{"missing separator", "bm9zZXBhcmF0b3I="},          // "noseparator"
		{"bad timestamp", "bm90YXRpbWV8c29tZS1pZA=="},      // "notatime|some-id"
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := pagination.DecodeToken(tc.token)
			assert.Error(t, err)
		})
	}
}
