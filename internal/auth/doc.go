// Package auth stores accounts and authenticates them.
//
// It provides:
//   - Argon2id password hashing in PHC string format
//   - HS256 JWT access tokens (subject = account ID)
//   - A SQLite account repository on the accounts table
//
// Emails are stored lower-cased and compared case-insensitively.
package auth
