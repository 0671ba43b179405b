// Package transform converts downloaded images into web-ready JPEGs.
//
// ProcessAll walks {source}/{tag}/{category}, re-encodes every png, jpg, jpeg
// and webp file as {output}/{tag}/{category}/{base}.jpg and writes a
// manifest.json per category listing the produced files:
//
//	t := transform.New(transform.Options{MaxDimension: 1920, Quality: 25}, log)
//	report, err := t.ProcessAll(ctx, "pixiv_images", "api_ready_images")
//
// Images with transparency are flattened by dropping the alpha channel.
// Images larger than MaxDimension on either side are scaled down with a
// Catmull-Rom filter so the longer side equals MaxDimension; smaller images
// keep their size. A file that cannot be decoded or written is logged and
// left out of the manifest.
package transform
