// Package storage provides the persistent model types and sentinel errors
// shared across storage adapter implementations.
//
// Storage adapters (memory, postgres) implement the server.Store interface
// defined in pkg/server/store.go. This package contains only shared types
// and helpers, not the interface itself.
package storage
