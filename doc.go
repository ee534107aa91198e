// Package admin provides the session lifecycle for the school administration
// console (bearer token persistence, unverified claim decoding, startup
// verification, route gating) plus the login workflow that feeds it.
//
// Session lifecycle:
//   - TokenStore persists a single bearer token. Backends live in the
//     tokenstore package (memory, sqlite through bun, redis).
//   - SessionDecoder extracts the admin identity and expiry from the token
//     payload WITHOUT checking the signature. Decoded claims drive display and
//     routing only; the remote API stays the authorization boundary, which is
//     why SessionManager probes the API before trusting a stored token.
//   - SessionManager owns AuthState. Start verifies a stored token once,
//     Login and Logout are explicit transitions, and HandleAPIError turns a
//     401/403 from any protected call into a logout. Consumers receive the
//     manager by injection and may Subscribe to state changes.
//
// Route gating:
//   - Evaluate (and RouteGuard) project AuthState into Pending, Render or
//     Redirect. The projection is pure and never mutates state.
//
// Activity sinks:
//   - ActivitySink receives verification, login and logout events. Sinks run
//     best-effort (errors are logged) so auditing never blocks the console.
package admin
