// Package auth defines the authenticated identity passed in by the
// upstream authentication layer and the signed invitation token.
//
// Farmhand does not issue or validate session credentials itself: every
// privileged request arrives with an already-authenticated user identity
// (id + email) which this package models. The only token minted here is
// the invitation join token, a time-boxed JWT embedded in the emailed
// join link. Invitation acceptance is authoritative on the stored
// invitation row, not on the token claims; the signature exists so the
// emailed link is tamper-evident in transit.
package auth
