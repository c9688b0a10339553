package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStubObjectStorage(t *testing.T) {
	s := NewStubObjectStorage()
	require.NotNil(t, s)
	assert.Equal(t, "https://storage.example.com", s.BaseURL)
}

func TestStubObjectStorage_Upload(t *testing.T) {
	s := NewStubObjectStorage()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		url, err := s.Upload(ctx, "audits/abc/screenshot.png", []byte{0x89, 0x50}, "image/png")
		require.NoError(t, err)
		assert.Equal(t, "https://storage.example.com/audits/abc/screenshot.png", url)

		data, ok := s.Object("audits/abc/screenshot.png")
		require.True(t, ok)
		assert.Equal(t, []byte{0x89, 0x50}, data)
	})

	t.Run("empty storage key", func(t *testing.T) {
		_, err := s.Upload(ctx, "", []byte("x"), "image/png")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage key is required")
	})

	t.Run("stored bytes are copied", func(t *testing.T) {
		payload := []byte("original")
		_, err := s.Upload(ctx, "audits/copy/screenshot.png", payload, "image/png")
		require.NoError(t, err)

		payload[0] = 'X'
		data, ok := s.Object("audits/copy/screenshot.png")
		require.True(t, ok)
		assert.Equal(t, []byte("original"), data)
	})
}
