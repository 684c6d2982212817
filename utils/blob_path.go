package utils

import (
	"fmt"
	"strings"
)

// BlobCategory is the asset-kind segment of a blob path.
type BlobCategory string

const (
	BlobCategoryImages       BlobCategory = "images"
	BlobCategoryTexts        BlobCategory = "texts"
	BlobCategoryOutputs      BlobCategory = "outputs"
	BlobCategoryProfileImage BlobCategory = "profile/image"
)

// ResolveBlobPath builds the storage key {userID}/{namespace...}/{category}/{filename}.
// All blobs live in one shared bucket and are scoped by the userID prefix.
// Segments are joined as given, without case or character normalization.
func ResolveBlobPath(userID string, namespace []string, category BlobCategory, filename string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id cannot be empty", ErrValidation)
	}
	if filename == "" {
		return "", fmt.Errorf("%w: filename cannot be empty", ErrValidation)
	}
	if category == "" {
		return "", fmt.Errorf("%w: category cannot be empty", ErrValidation)
	}

	segments := make([]string, 0, len(namespace)+3)
	segments = append(segments, userID)
	for i, segment := range namespace {
		if segment == "" {
			return "", fmt.Errorf("%w: namespace segment %d is empty", ErrValidation, i)
		}
		segments = append(segments, segment)
	}
	segments = append(segments, string(category), filename)

	return strings.Join(segments, "/"), nil
}

// ResolveBlobDir is ResolveBlobPath without the filename, used as the base
// path for name allocation and listings.
func ResolveBlobDir(userID string, namespace []string, category BlobCategory) (string, error) {
	path, err := ResolveBlobPath(userID, namespace, category, "_")
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(path, "/_"), nil
}

// UserBlobPrefix is the prefix shared by every blob a user owns.
func UserBlobPrefix(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("%w: user id cannot be empty", ErrValidation)
	}
	return userID + "/", nil
}

// MagazineNamespace returns the namespace segments for a magazine folder, or
// nil when no magazine is given.
func MagazineNamespace(magazine, folder string) []string {
	if magazine == "" {
		return nil
	}
	if folder == "" {
		return []string{"magazines", magazine}
	}
	return []string{"magazines", magazine, folder}
}
