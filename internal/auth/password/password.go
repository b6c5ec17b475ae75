package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	defaultTime    uint32 = 1
	defaultMemory  uint32 = 64 * 1024
	defaultThreads uint8  = 4
	keyLength      uint32 = 32
	saltLength            = 16
)

type params struct {
	memory  uint32
	time    uint32
	threads uint8
}

// Hash returns the Argon2id hash used for stored credentials, in PHC
// string format.
func Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, defaultTime, defaultMemory, defaultThreads, keyLength)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		defaultMemory, defaultTime, defaultThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify checks whether a password matches the encoded Argon2id hash.
// Malformed hashes verify as false rather than erroring, so a corrupted
// credential row behaves like a wrong password.
func Verify(password, encoded string) bool {
	p, salt, key, ok := decode(encoded)
	if !ok {
		return false
	}

	check := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, check) == 1
}

func decode(encoded string) (params, []byte, []byte, bool) {
	var p params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return p, nil, nil, false
	}

	fields := strings.Split(parts[3], ",")
	if len(fields) != 3 {
		return p, nil, nil, false
	}
	memory, ok := parseField(fields[0], "m=", 32)
	if !ok {
		return p, nil, nil, false
	}
	timeCost, ok := parseField(fields[1], "t=", 32)
	if !ok {
		return p, nil, nil, false
	}
	threads, ok := parseField(fields[2], "p=", 8)
	if !ok {
		return p, nil, nil, false
	}
	p.memory = uint32(memory)
	p.time = uint32(timeCost)
	p.threads = uint8(threads)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, false
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, false
	}
	return p, salt, key, true
}

func parseField(field, prefix string, bits int) (uint64, bool) {
	value, ok := strings.CutPrefix(field, prefix)
	if !ok {
		return 0, false
	}
	parsed, err := strconv.ParseUint(value, 10, bits)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
