package crypto

import (
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

// tokenSize is the amount of random bytes in an access token.
const tokenSize = 32

// RandomData returns a slice of the specified size containing random data.
func RandomData(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("size cannot be negative")
	}

	data := make([]byte, size)
	_, err := rand.Read(data)
	if err != nil {
		return nil, fmt.Errorf("failed generating random data: %w", err)
	}

	return data, nil
}

// NewToken returns a new random access token, encoded as Base58.
func NewToken() (string, error) {
	data, err := RandomData(tokenSize)
	if err != nil {
		return "", err
	}

	return base58.Encode(data), nil
}
