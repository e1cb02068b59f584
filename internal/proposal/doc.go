// Package proposal turns proposal form data into priced proposals and renders
// them as plain text or Excel workbooks. Proposals are built on demand and are
// never stored.
package proposal
