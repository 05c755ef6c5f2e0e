// Package twofa implements the emailed one-time code used as the second
// login step. Codes are random six-digit strings stored on the user record
// with an absolute expiry; they are not TOTP values.
package twofa
