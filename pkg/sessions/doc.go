// Package sessions validates and revokes the opaque session tokens issued at
// login. Tokens expire lazily: a token found past its expiry is cleared from
// the user record the first time it is presented.
package sessions
