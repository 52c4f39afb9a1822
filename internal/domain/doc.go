// Package domain holds the error values shared by the collector's internal
// layers and its public API.
//
// It has no dependencies on infrastructure (processes, HTTP, logging) so
// both internal/app and pkg/logcollector can import it.
package domain
