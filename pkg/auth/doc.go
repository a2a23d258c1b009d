// Package auth provides bearer-token authentication for the fitpulse
// backend: the identity resolver that turns an inbound token into an
// authenticated principal, and the HTTP middleware that enforces it.
//
// Resolution fails closed. Every failure mode collapses into one
// unauthorized outcome: missing header, wrong scheme, bad signature,
// expiry, missing subject, or a subject with no matching or no longer
// active user. The boundary never reveals why a credential was refused.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from
// handler logic. The middleware injects the resolved principal into the
// request context for downstream handlers.
package auth
