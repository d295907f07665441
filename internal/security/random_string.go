package security

import (
	"crypto/rand"
	"errors"
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure string of the
// requested length drawn uniformly from alphabet. Used for backup
// download nonces.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 || len(alphabet) > 256 {
		return "", errEmptyAlphabet
	}

	// Rejection sampling keeps the draw unbiased for alphabets whose
	// size does not divide 256.
	limit := byte(256 - (256 % len(alphabet)))
	value := make([]byte, 0, length)
	buffer := make([]byte, length)
	for len(value) < length {
		if _, err := rand.Read(buffer); err != nil {
			return "", err
		}
		for _, raw := range buffer {
			if limit != 0 && raw >= limit {
				continue
			}
			value = append(value, alphabet[int(raw)%len(alphabet)])
			if len(value) == length {
				break
			}
		}
	}

	return string(value), nil
}
