// Package application provides application initialization and dependency wiring.
// It opens the catalog store, loads the package catalog, and builds the
// calculator, proposal builder, HTTP handlers and server on top of it, keeping
// the main package focused on CLI parsing and orchestration.
package application
