// Package mail delivers invitation emails.
//
// Delivery is best effort: callers dispatch sends asynchronously and an
// undeliverable email never fails the operation that triggered it. The
// invitation row in the database remains the source of truth either
// way, so a lost email only means the recipient needs a fresh invite.
//
// Two implementations are provided: SMTPMailer for real delivery and
// LogMailer, which writes the message to the log for development and
// tests.
package mail
