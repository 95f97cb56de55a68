// Package storage keeps the ledger's four record collections (accounts,
// transactions, users and settings) in a single SQLite file with embedded
// schema migrations and multi-collection atomic units.
package storage
