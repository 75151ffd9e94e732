// Package pieces provides simple built-in piano pieces
package pieces

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/james-see/wavetone/pkg/score"
)

//go:embed data/*.score
var files embed.FS

const ext = ".score"

// ErrUnknownPiece is returned for names that are not built in
var ErrUnknownPiece = errors.New("unknown piece")

// Info describes a built-in piece
type Info struct {
	Name  string  `json:"name"`
	Title string  `json:"title"`
	Parts int     `json:"parts"`
	BPM   float64 `json:"bpm"`
}

// Names returns the built-in piece names in order
func Names() []string {
	entries, err := files.ReadDir("data")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(names)
	return names
}

// List describes every built-in piece
func List() ([]Info, error) {
	var out []Info
	for _, name := range Names() {
		s, err := Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, Info{Name: name, Title: s.Title, Parts: len(s.Parts), BPM: s.BPM})
	}
	return out, nil
}

// Source returns the score text of a piece
func Source(name string) (string, error) {
	data, err := files.ReadFile(path.Join("data", normalize(name)+ext))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownPiece, name)
	}
	return string(data), nil
}

// Get parses a piece
func Get(name string) (*score.Score, error) {
	text, err := Source(name)
	if err != nil {
		return nil, err
	}
	s, err := score.ParseString(text)
	if err != nil {
		return nil, fmt.Errorf("piece %s: %w", name, err)
	}
	return s, nil
}

// Exists reports whether name is a built-in piece
func Exists(name string) bool {
	_, err := Source(name)
	return err == nil
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ext)
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}
