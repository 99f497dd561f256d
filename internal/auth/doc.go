// Package auth provides account management and token-based authentication
// for ShadeSync Core.
//
// Accounts are keyed by email address. Passwords are hashed with Argon2id
// and stored in PHC string format. Authenticated sessions use short-lived
// HS256 JWT access tokens validated by signature alone, so request
// authentication never touches the database.
package auth
