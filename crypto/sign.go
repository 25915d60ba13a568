package crypto

// Message authentication is based on cryptopasta - basic cryptography examples
//
// Written in 2015 by George Tankersley <george.tankersley@gmail.com>
//
// To the extent possible under law, the author(s) have dedicated all copyright
// and related and neighboring rights to this software to the public domain
// worldwide. This software is distributed without any warranty.
//
// You should have received a copy of the CC0 Public Domain Dedication along
// with this software. If not, see // <http://creativecommons.org/publicdomain/zero/1.0/>.
//
// Message authentication: HMAC SHA512/256

import (
	"crypto/hmac"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// HMACKey is a 256-bit secret key used for message authentication.
type HMACKey [32]byte

// DeriveHMACKey derives an HMAC key from a secret using HKDF-SHA512/256. The
// info parameter binds the key to a specific purpose, so that the same secret
// can be used for unrelated keys.
func DeriveHMACKey(secret []byte, info string) (*HMACKey, error) {
	if len(secret) == 0 {
		return nil, errors.New("empty secret")
	}

	r := hkdf.New(sha512.New512_256, secret, nil, []byte(info))

	key := &HMACKey{}
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("failed reading key: %w", err)
	}

	return key, nil
}

// Sign produces the HMAC-SHA512/256 of data.
func (k *HMACKey) Sign(data []byte) []byte {
	h := hmac.New(sha512.New512_256, k[:])
	h.Write(data)
	return h.Sum(nil)
}

// Verify checks the supplied MAC against data in constant time.
func (k *HMACKey) Verify(data, suppliedMAC []byte) bool {
	return hmac.Equal(k.Sign(data), suppliedMAC)
}
