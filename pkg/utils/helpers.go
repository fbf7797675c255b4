package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//InSlice returns true if given string appears in given slice
func InSlice(lookingFor string, slice []string) bool {
	for _, s := range slice {
		if s == lookingFor {
			return true
		}
	}

	return false
}

//ListDir returns a list of files in given path. A missing directory is an empty list (directories are created lazily).
func ListDir(path string) ([]string, error) {
	names := make([]string, 0)
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return names, nil
		}
		return nil, fmt.Errorf("ListDir: Error, got '%v'", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	return names, nil
}

//IsVideo returns true if given file name has one of the accepted video extensions
func IsVideo(name string) bool {
	return InSlice(strings.ToLower(filepath.Ext(name)), VideoExtensions)
}

//Stem returns the file name of given path without directory and extension
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

//IsPlainName returns true if given name is a single path element, so joining it to a directory can never leave that directory
func IsPlainName(name string) bool {
	return name != "" && name != "." && name != ".." && name == filepath.Base(name) && !strings.ContainsAny(name, `/\`)
}
