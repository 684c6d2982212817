package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBlobPath(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		namespace []string
		category  BlobCategory
		filename  string
		want      string
	}{
		{"image", "alice", nil, BlobCategoryImages, "tokyo.jpg", "alice/images/tokyo.jpg"},
		{"profile image", "alice", nil, BlobCategoryProfileImage, "me.png", "alice/profile/image/me.png"},
		{"magazine folder", "alice", []string{"magazines", "mag-1", "folder-7"}, BlobCategoryTexts, "a.txt", "alice/magazines/mag-1/folder-7/texts/a.txt"},
		{"case preserved", "Alice", nil, BlobCategoryOutputs, "Voice.MP3", "Alice/outputs/Voice.MP3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBlobPath(tt.userID, tt.namespace, tt.category, tt.filename)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := ResolveBlobPath(tt.userID, tt.namespace, tt.category, tt.filename)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestResolveBlobPathRejectsEmptyParts(t *testing.T) {
	_, err := ResolveBlobPath("", nil, BlobCategoryImages, "a.jpg")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ResolveBlobPath("alice", nil, BlobCategoryImages, "")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ResolveBlobPath("alice", []string{"magazines", ""}, BlobCategoryImages, "a.jpg")
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ResolveBlobPath("alice", nil, "", "a.jpg")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestResolveBlobDir(t *testing.T) {
	dir, err := ResolveBlobDir("bob", MagazineNamespace("mag", ""), BlobCategoryImages)
	require.NoError(t, err)
	assert.Equal(t, "bob/magazines/mag/images", dir)

	prefix, err := UserBlobPrefix("bob")
	require.NoError(t, err)
	assert.Equal(t, "bob/", prefix)
}
