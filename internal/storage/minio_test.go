package storage

import (
	"testing"

	"github.com/jpfielding/dicometa/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelName(t *testing.T) {
	tests := []struct {
		prefix, key, want string
	}{
		{"uploads/42/", "uploads/42/DICOMDIR", "DICOMDIR"},
		{"uploads/42", "uploads/42/IM0001.dcm", "IM0001.dcm"},
		{"uploads/42/", "uploads/42/sub/IM0002.dcm", "sub/IM0002.dcm"},
		{"", "IM0003.dcm", "IM0003.dcm"},
		{"uploads/42/IM0004.dcm", "uploads/42/IM0004.dcm", "uploads/42/IM0004.dcm"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, relName(tt.prefix, tt.key), tt.key)
	}
}

func TestKeep(t *testing.T) {
	assert.False(t, keep("uploads/42/", 0, 0))
	assert.True(t, keep("uploads/42/a.dcm", 1<<30, 0))
	assert.True(t, keep("uploads/42/a.dcm", 100, 100))
	assert.False(t, keep("uploads/42/a.dcm", 101, 100))
}

func TestNewMinio(t *testing.T) {
	b, err := NewMinio(config.MinioConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s"}, "uploads")
	require.NoError(t, err)
	assert.Equal(t, "uploads", b.name)

	_, err = NewMinio(config.MinioConfig{Endpoint: "http://localhost:9000/path"}, "uploads")
	assert.Error(t, err, "endpoints are host:port without a scheme")
}
