package script

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Loading errors.
var (
	ErrNotFound = errors.New("script file not found")
	ErrInvalid  = errors.New("script file is not valid JSON")
	ErrNoScenes = errors.New("script has no scenes")
)

// Load reads and parses a lesson script from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("unable to read script: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(doc.Scenes) == 0 {
		return nil, ErrNoScenes
	}
	return &doc, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives the output file base name from the document title.
func (d *Document) Slug() string {
	s := slugPattern.ReplaceAllString(strings.ToLower(d.Title), "-")
	return strings.Trim(s, "-")
}
