package crypto_test

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/vestibule/crypto"
)

func TestDeriveHMACKey(t *testing.T) {
	t.Parallel()

	secret := []byte("a-very-long-secret-used-only-for-testing")

	k1, err := crypto.DeriveHMACKey(secret, "purpose one")
	require.NoError(t, err)
	k2, err := crypto.DeriveHMACKey(secret, "purpose one")
	require.NoError(t, err)
	k3, err := crypto.DeriveHMACKey(secret, "purpose two")
	require.NoError(t, err)

	assert.Equal(t, *k1, *k2)
	assert.NotEqual(t, *k1, *k3)

	_, err = crypto.DeriveHMACKey(nil, "purpose")
	assert.EqualError(t, err, "empty secret")
}

func TestHMACKey(t *testing.T) {
	t.Parallel()

	key, err := crypto.DeriveHMACKey([]byte("secret"), "test")
	require.NoError(t, err)
	other, err := crypto.DeriveHMACKey([]byte("other secret"), "test")
	require.NoError(t, err)

	data := []byte("payload")
	mac := key.Sign(data)
	assert.Len(t, mac, 32)

	tests := []struct {
		name string
		key  *crypto.HMACKey
		data []byte
		mac  []byte
		exp  bool
	}{
		{name: "ok/valid", key: key, data: data, mac: mac, exp: true},
		{name: "err/wrong_key", key: other, data: data, mac: mac, exp: false},
		{name: "err/modified_data", key: key, data: []byte("payload!"), mac: mac, exp: false},
		{name: "err/truncated_mac", key: key, data: data, mac: mac[:16], exp: false},
		{name: "err/empty_mac", key: key, data: data, mac: nil, exp: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.exp, tt.key.Verify(tt.data, tt.mac))
		})
	}
}

func TestNewToken(t *testing.T) {
	t.Parallel()

	tok1, err := crypto.NewToken()
	require.NoError(t, err)
	tok2, err := crypto.NewToken()
	require.NoError(t, err)

	assert.NotEqual(t, tok1, tok2)

	raw, err := base58.Decode(tok1)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}
