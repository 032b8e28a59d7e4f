// Package audit records security-relevant account activity in the
// audit_logs table.
//
// Entries are append-only. The account service writes one for every
// password change, and the API writes one per login attempt.
package audit
