package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// artworkFilePattern matches {id}_p{page}.{ext}; the id is the leading digit
// run. \d is ASCII [0-9] only: ids written in other Unicode digits are not
// recognized.
var artworkFilePattern = regexp.MustCompile(`^(\d+)_p\d+\..+$`)

// Inventory is the set of artwork ids found on disk
type Inventory map[string]struct{}

// Has reports whether the artwork id is present
func (inv Inventory) Has(id string) bool {
	_, ok := inv[id]
	return ok
}

// Add records an artwork id
func (inv Inventory) Add(id string) {
	inv[id] = struct{}{}
}

// Len returns the number of distinct artwork ids
func (inv Inventory) Len() int {
	return len(inv)
}

// ArtworkIDFromFilename extracts the artwork id from a downloaded file name
func ArtworkIDFromFilename(name string) (string, bool) {
	match := artworkFilePattern.FindStringSubmatch(name)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// ScanExisting lists each directory non-recursively and collects the artwork
// ids of matching entries. Missing directories are skipped, as are leftover
// partial downloads.
func ScanExisting(dirs []string) (Inventory, error) {
	inv := make(Inventory)
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return inv, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		for _, entry := range entries {
			if strings.HasSuffix(entry.Name(), PartSuffix) {
				continue
			}
			if id, ok := ArtworkIDFromFilename(entry.Name()); ok {
				inv.Add(id)
			}
		}
	}
	return inv, nil
}
