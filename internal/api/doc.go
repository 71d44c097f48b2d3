// Package api provides the HTTP handlers over the submission pipeline:
// session creation and lookup, and the submit operation itself. It is a
// thin boundary; all semantics live in the service layer.
package api
