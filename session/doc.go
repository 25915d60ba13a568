// Package session verifies signed session cookies and resolves the access
// token they carry into a user.
//
// A session cookie value has the form
//
//	<base64url(payload)>.<base64url(HMAC-SHA512/256(base64url(payload)))>
//
// where payload is the JSON encoding of an Envelope. Verification never
// reports why a cookie was rejected: a missing, malformed, forged or expired
// cookie all yield no envelope.
package session
