// Package storage provides the sources the package catalog is loaded from at
// startup: an in-memory catalog and a SQLite-backed table.
package storage
