// Package api defines the wire-level request and response types for the
// fitpulse backend, the structured error taxonomy, and boundary validation.
//
// Every endpoint has a tagged request struct with explicit field
// constraints, validated before any request reaches storage or the auth
// core. Errors use a small closed set of types that map one-to-one onto
// HTTP status codes; token-rejection reasons are deliberately collapsed
// into a single unauthorized type so the boundary never reveals why a
// credential was refused.
package api
