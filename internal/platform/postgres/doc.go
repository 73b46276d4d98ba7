// Package postgres implements the persistence interfaces of
// internal/store on top of PostgreSQL, accessed through database/sql with
// the pgx stdlib driver. Every store accepts a DBTX so it can run on a
// plain connection or inside a caller-managed transaction via WithTx.
package postgres
