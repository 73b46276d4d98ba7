// Package store defines the persistence interfaces of the progression
// engine and shared persistence helpers (transaction runner, sentinel
// errors, the DBTX abstraction). Implementations live in
// internal/platform/postgres.
package store
