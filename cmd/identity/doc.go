// Package identity holds avian's user records and the credential store the
// login strategies read from.
//
// Users are identified by a ULID and log in with a username that is matched
// exactly as stored. The store only keeps the Argon2id hash of a password;
// hashing happens in cmd/security/password before a user reaches the store.
package identity
