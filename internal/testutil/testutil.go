// Package testutil provides test utilities for allsky, including:
//   - a fake archive HTTP server that renders directory listings and serves
//     file bytes from an in-memory tree, counting requests (archive.go)
//   - PGM image-stack and skymap fixture generators (fixtures.go)
//
// None of the helpers require network access or external services.
package testutil
