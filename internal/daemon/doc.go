// Package daemon runs the reloop background process: it enforces
// single-instance execution, warms the similarity engine from the catalog,
// and serves the HTTP API and media files.
package daemon
