package utils

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// MaxNameAttempts bounds the number of existence checks made by AllocateUniqueName.
const MaxNameAttempts = 1000

const nameTimestampLayout = "20060102150405"

var nowFunc = time.Now

// AllocateUniqueName returns a path under basePath that does not collide with
// an existing object. It tries {filename}, then {stem}_1{ext}, {stem}_2{ext}, ...
//
// After MaxNameAttempts checks, or on the first error from exists, it returns
// {stem}_{YYYYMMDDhhmmss}{ext} without checking it. That name can still collide
// if two uploads of the same name land in the same second; uploads must not be
// blocked by the store's existence check, so the risk is accepted.
func AllocateUniqueName(exists func(path string) (bool, error), basePath, filename string) string {
	stem, ext := splitName(filename)
	candidate := joinBlobPath(basePath, filename)

	for attempt := 1; attempt <= MaxNameAttempts; attempt++ {
		found, err := exists(candidate)
		if err != nil {
			break
		}
		if !found {
			return candidate
		}
		candidate = joinBlobPath(basePath, fmt.Sprintf("%s_%d%s", stem, attempt, ext))
	}

	return joinBlobPath(basePath, fmt.Sprintf("%s_%s%s", stem, nowFunc().Format(nameTimestampLayout), ext))
}

func splitName(filename string) (stem, ext string) {
	ext = path.Ext(filename)
	stem = strings.TrimSuffix(filename, ext)
	if stem == "" {
		// dotfile such as ".env": no extension
		return filename, ""
	}
	return stem, ext
}

func joinBlobPath(basePath, filename string) string {
	basePath = strings.TrimSuffix(basePath, "/")
	if basePath == "" {
		return filename
	}
	return basePath + "/" + filename
}
