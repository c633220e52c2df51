package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/midbel/distance"
)

// suggestFragment reports a "no fragment named X" error, annotated with
// Levenshtein-close names found in root when the fragment is missing purely
// because of a typo.
func suggestFragment(root, name string, cause error) error {
	names := listFragments(root)
	close := distance.Levenshtein(name, names)
	if len(close) == 0 {
		return fmt.Errorf("no fragment named %q in %s: %w", name, root, cause)
	}
	return fmt.Errorf("no fragment named %q in %s, did you mean %s?: %w", name, root, strings.Join(close, ", "), cause)
}

func listFragments(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".xml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".xml"))
	}
	return names
}
