package utils

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func existing(paths ...string) func(string) (bool, error) {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) (bool, error) {
		return set[p], nil
	}
}

func TestAllocateUniqueNameFree(t *testing.T) {
	got := AllocateUniqueName(existing(), "alice/texts", "interview.txt")
	assert.Equal(t, "alice/texts/interview.txt", got)
}

func TestAllocateUniqueNameSkipsTakenSuffixes(t *testing.T) {
	check := existing("base/interview.txt", "base/interview_1.txt", "base/interview_2.txt")

	got := AllocateUniqueName(check, "base", "interview.txt")

	assert.Equal(t, "base/interview_3.txt", got)
}

func TestAllocateUniqueNameWithoutExtension(t *testing.T) {
	got := AllocateUniqueName(existing("base/notes"), "base/", "notes")
	assert.Equal(t, "base/notes_1", got)
}

func TestAllocateUniqueNameFallsBackAfterBound(t *testing.T) {
	fixed := time.Date(2024, 5, 17, 9, 30, 12, 0, time.UTC)
	nowFunc = func() time.Time { return fixed }
	defer func() { nowFunc = time.Now }()

	calls := 0
	got := AllocateUniqueName(func(string) (bool, error) {
		calls++
		return true, nil
	}, "base", "photo.jpg")

	assert.Equal(t, "base/photo_20240517093012.jpg", got)
	assert.LessOrEqual(t, calls, MaxNameAttempts)
}

func TestAllocateUniqueNameFallsBackOnCheckError(t *testing.T) {
	calls := 0
	got := AllocateUniqueName(func(string) (bool, error) {
		calls++
		return false, errors.New("store unavailable")
	}, "base", "photo.jpg")

	assert.Regexp(t, regexp.MustCompile(`^base/photo_\d{14}\.jpg$`), got)
	assert.Equal(t, 1, calls)
}
