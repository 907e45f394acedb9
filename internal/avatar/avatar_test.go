package avatar

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashstarter/dashstarter/internal/config"
)

func testConfig(publicBaseURL string) config.Avatar {
	return config.Avatar{
		Endpoint:      "http://localhost:9000",
		Region:        "us-east-1",
		Bucket:        "avatars",
		AccessKey:     "test",
		SecretKey:     "test",
		UsePathStyle:  true,
		PublicBaseURL: publicBaseURL,
	}
}

func TestUploadRejectsUnknownTypes(t *testing.T) {
	s := &Store{publicBaseURL: "https://cdn.example.com/avatars"}

	// type check happens before any network call
	testCases := []string{"avatar.exe", "avatar.svg", "avatar", "avatar.png.txt"}

	for _, filename := range testCases {
		t.Run(filename, func(t *testing.T) {
			_, err := s.Upload(context.Background(), "p-1", filename, strings.NewReader("x"))
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestRemoveIgnoresForeignURLs(t *testing.T) {
	s := &Store{publicBaseURL: "https://cdn.example.com/avatars"}

	// external image references are cleared without touching the bucket
	err := s.Remove(context.Background(), "https://elsewhere.example.com/pic.png")
	require.NoError(t, err)

	err = s.Remove(context.Background(), "")
	require.NoError(t, err)
}

func TestNewStoreTrimsBaseURL(t *testing.T) {
	s, err := NewStore(testConfig("https://cdn.example.com/avatars/"))
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars", s.publicBaseURL)
}
