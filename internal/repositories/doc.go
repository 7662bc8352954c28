// Package repositories implements SQLite persistence for account records.
//
// The package owns the users table and its indexes. [EnsureSchema] creates
// both idempotently at startup; there is no further migration path.
//
// Key Implementations:
//   - [UserRepository] : account persistence with email, id, and
//     billing-customer lookups plus idempotent creation and billing-linkage
//     updates
//
// Every operation except [UserRepository.UpsertWithBilling] executes as one
// statement; duplicate creation is absorbed by the email uniqueness
// constraint rather than check-then-insert logic, so racing creators cannot
// produce two rows for one email.
package repositories
