package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Orientation is the aspect-ratio class of an image
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
	Square     Orientation = "square"
)

// Orientations lists the classes in folder order
func Orientations() []Orientation {
	return []Orientation{Horizontal, Vertical, Square}
}

// ParseOrientation validates an orientation name
func ParseOrientation(s string) (Orientation, bool) {
	switch o := Orientation(strings.ToLower(s)); o {
	case Horizontal, Vertical, Square:
		return o, true
	}
	return "", false
}

// Classify derives the orientation from pixel dimensions
func Classify(width, height int) Orientation {
	switch {
	case width > height:
		return Horizontal
	case height > width:
		return Vertical
	default:
		return Square
	}
}

// SanitizeFolderName removes characters that are invalid in file names on
// common filesystems: \ / * ? : " < > |
func SanitizeFolderName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`\/*?:"<>|`, r) {
			return -1
		}
		return r
	}, name)
}

// Layout maps a tag's images to folders under the save root
type Layout struct {
	Base   string
	Sorted bool
}

// NewLayout places the tag's folder under saveRoot
func NewLayout(saveRoot, tag string, sortByOrientation bool) Layout {
	return Layout{
		Base:   filepath.Join(saveRoot, SanitizeFolderName(tag)),
		Sorted: sortByOrientation,
	}
}

// CandidateDirs returns every folder an image of this tag may be saved to
func (l Layout) CandidateDirs() []string {
	if !l.Sorted {
		return []string{l.Base}
	}
	dirs := make([]string, 0, 3)
	for _, o := range Orientations() {
		dirs = append(dirs, filepath.Join(l.Base, string(o)))
	}
	return dirs
}

// DirFor returns the folder for an image of the given dimensions
func (l Layout) DirFor(width, height int) string {
	if !l.Sorted {
		return l.Base
	}
	return filepath.Join(l.Base, string(Classify(width, height)))
}

// Prepare creates the base folder in the unsorted layout. Orientation
// folders are created on first download.
func (l Layout) Prepare() error {
	if l.Sorted {
		return nil
	}
	if err := os.MkdirAll(l.Base, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", l.Base, err)
	}
	return nil
}
