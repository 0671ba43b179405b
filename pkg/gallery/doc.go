// Package gallery serves random images from a processed image library.
//
// The library is the transformer's output: {root}/{tag}/{orientation}/ with a
// manifest.json per orientation folder. Routes:
//
//	GET /api?orientation=any|horizontal|vertical|square   random image bytes
//	GET /                                                 tag and image counts
//	GET /metrics                                          Prometheus metrics
//	GET /healthcheck                                      liveness
//
// Errors are reported as {"error": "..."} with status 400 for an unknown
// orientation, 404 for a missing or empty manifest and 500 when the library
// or the chosen file is unavailable.
package gallery
