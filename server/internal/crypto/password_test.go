package crypto_test

import (
	"strings"
	"testing"

	"github.com/QiPanTanYi/banyan/server/internal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := crypto.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"), "ожидается bcrypt с cost 10")
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := crypto.HashPassword("secret1")
	require.NoError(t, err)
	second, err := crypto.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, crypto.ComparePassword("secret1", first))
	assert.True(t, crypto.ComparePassword("secret1", second))
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := crypto.HashPassword(strings.Repeat("x", 73))
	require.ErrorIs(t, err, crypto.ErrPasswordTooLong)
}

func TestComparePassword(t *testing.T) {
	hash, err := crypto.HashPassword("secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
	}{
		{name: "Верный пароль", password: "secret1", hash: hash, want: true},
		{name: "Неверный пароль", password: "secret2", hash: hash, want: false},
		{name: "Пустой пароль", password: "", hash: hash, want: false},
		{name: "Битый хеш", password: "secret1", hash: "not-a-hash", want: false},
		{name: "Открытый текст вместо хеша", password: "secret1", hash: "secret1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, crypto.ComparePassword(tt.password, tt.hash))
		})
	}
}
