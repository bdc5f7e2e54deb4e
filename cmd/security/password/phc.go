package password

import (
	"encoding/base64"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type phc struct {
	memoryKiB   uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

func parsePHC(encoded string) (phc, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return phc{}, ErrInvalidHash
	}
	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return phc{}, ErrInvalidHash
	}

	out, ok := parseParams(parts[3])
	if !ok {
		return phc{}, ErrInvalidHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) || len(salt) > int(maxSaltLength) {
		return phc{}, ErrInvalidHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) < int(minKeyLength) || len(key) > int(maxKeyLength) {
		return phc{}, ErrInvalidHash
	}
	out.salt = salt
	out.key = key
	return out, nil
}

// parseParams reads "m=<KiB>,t=<iterations>,p=<lanes>" in that order.
func parseParams(s string) (phc, bool) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return phc{}, false
	}

	var out phc
	for i, name := range []string{"m", "t", "p"} {
		k, v, found := strings.Cut(fields[i], "=")
		if !found || k != name {
			return phc{}, false
		}
		bits := 32
		if name == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(v, 10, bits)
		if err != nil || n == 0 {
			return phc{}, false
		}
		switch name {
		case "m":
			out.memoryKiB = uint32(n)
		case "t":
			out.iterations = uint32(n)
		case "p":
			out.parallelism = uint8(n)
		}
	}
	return out, true
}
