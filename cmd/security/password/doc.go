// Package password hashes and verifies account passwords with Argon2id.
//
// Hashes are stored in the PHC string form
//
//	$argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<key>
//
// and are treated as untrusted input when verified: parameters outside sane
// bounds are rejected before any key derivation runs.
package password
