package hash

import (
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	stdhash "hash"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const saltLength = 16

const saltLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Hasher derives password digests stored as "salt<separator>hexdigest".
type Hasher struct {
	Name       string
	Iterations int
	Separator  string
}

func (h Hasher) Hash(password string) (string, error) {
	salt, err := randomSalt()
	if err != nil {
		return "", fmt.Errorf("hash: salt generation failed: %w", err)
	}
	return salt + h.Separator + h.derive(password, salt), nil
}

// Verify reports whether password matches the stored digest. A malformed
// stored value (missing separator) is treated as a mismatch, never an error.
func (h Hasher) Verify(password, stored string) bool {
	salt, want, ok := strings.Cut(stored, h.Separator)
	if !ok || salt == "" || want == "" {
		return false
	}
	got := h.derive(password, salt)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

func (h Hasher) derive(password, salt string) string {
	fn := h.hashFunc()
	key := pbkdf2.Key([]byte(password), []byte(salt), h.Iterations, fn().Size(), fn)
	return hex.EncodeToString(key)
}

func (h Hasher) hashFunc() func() stdhash.Hash {
	switch h.Name {
	case "sha1":
		return sha1.New
	case "sha512":
		return sha512.New
	default:
		return sha256.New
	}
}

func randomSalt() (string, error) {
	// rejection sampling keeps the letter distribution uniform
	max := 256 - 256%len(saltLetters)

	out := make([]byte, 0, saltLength)
	buf := make([]byte, saltLength)
	for len(out) < saltLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= max {
				continue
			}
			out = append(out, saltLetters[int(b)%len(saltLetters)])
			if len(out) == saltLength {
				break
			}
		}
	}
	return string(out), nil
}
