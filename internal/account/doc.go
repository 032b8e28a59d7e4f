// Package account implements account operations that span persistence,
// auditing and notification: creating an account and changing its password.
//
// A password change is committed before the confirmation email is sent.
// Delivery failures are logged and never undo the change.
package account
