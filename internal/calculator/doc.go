// Package calculator prices tuition packages. It turns a package type, a list
// of subjects with weekly frequencies and a session duration into an itemised
// cost breakdown, and validates selections against the package limits. All
// operations are pure functions of their inputs and the immutable Catalog the
// calculator was built with.
package calculator
