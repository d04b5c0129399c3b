// Package api contains the transport-friendly view types exchanged between
// the daemon's HTTP surface and its clients, plus the service layer that
// produces them from the catalog and the similarity engine.
package api
