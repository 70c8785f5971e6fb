// Package auth implements the Groceria account lifecycle: signup, email
// verification, login, password reset and change, admin promotion, and
// logout with token blacklisting.
//
// Account lifecycle:
//   - Accounts orchestrates every transition. It reads and writes users through
//     a CredentialStore, mints and checks purpose-scoped JWTs through a
//     TokenService, and hands rendered messages to a Mailer.
//   - Verification and admin promotion are one-way. ApplyTransition is the only
//     place flags flip, so re-running a transition is a no-op.
//
// Storage:
//   - NewUsersRepository is the bun backed CredentialStore (sqlite or postgres,
//     schema managed by Migrate). store/mongostore provides a document store
//     with the same contract. Both report unique index violations as
//     *DuplicateKeyError so callers can name the offending field.
//
// Access control:
//   - AccessControl wraps middleware/jwtware. Missing credentials yield 401,
//     invalid or expired tokens yield 403, and tokens found in the user's
//     blacklist (or the optional RevocationCache) are rejected with 401.
//
// Activity sinks:
//   - ActivitySink receives audit events for every lifecycle action. Sinks run
//     best-effort; failures are logged and never fail the request.
package auth
