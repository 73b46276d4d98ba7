// Package mocks provides centralized mock implementations for testing.
//
// The mocks are map-backed in-memory stores implementing the store
// interfaces. They return copies of stored records, so a test observes
// exactly what was persisted through Update, not in-flight mutation of a
// shared pointer. WithTx returns the mock itself; transaction scoping is
// exercised against a real database, not here.
package mocks
