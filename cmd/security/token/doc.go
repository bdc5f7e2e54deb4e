// Package token signs short cookie values and generates opaque random tokens.
//
// Signed values have the form "<value>.<mac>" where mac is the unpadded
// base64url HMAC-SHA256 of value. A Signer holds one or more keys: the first
// signs, all of them verify, so secrets can be rotated without logging
// everybody out.
package token
