// Package storage owns the on-disk layout of downloaded artworks.
//
// The storage package handles:
//   - Rebuilding the set of already downloaded artwork ids from file names
//   - Mapping a tag to its folder and an image to its orientation subfolder
//   - Saving downloads through a temporary file and rename
//
// Files are named {artworkID}_p{page}.{ext}, exactly as Pixiv serves them, so
// the directory listing is the only record of past runs:
//
//	layout := storage.NewLayout("pixiv_images", tag, true)
//	existing, err := storage.ScanExisting(layout.CandidateDirs())
//	if !existing.Has("12345") {
//	    dir := layout.DirFor(width, height)
//	    n, err := storage.SaveStream(body, filepath.Join(dir, name))
//	}
package storage
