package token

import "errors"

var (
	ErrKeyMissing   = errors.New("signing key missing")
	ErrKeyTooShort  = errors.New("signing key too short")
	ErrBadSignature = errors.New("bad signature")
)
