package auth

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("test-password-123")
	require.NoError(t, err)

	assert.Contains(t, hash, "$argon2id$")
	assert.Contains(t, hash, "v=19")
	assert.Contains(t, hash, "m=65536,t=3,p=4")
	assert.NoError(t, ValidateHash(hash))
}

func TestHashPassword_UniquePerCall(t *testing.T) {
	t.Parallel()

	hash1, err := HashPassword("same-password")
	require.NoError(t, err)
	hash2, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "salts differ")
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)

	match, err := VerifyPassword("correct-horse-battery-staple", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifyPassword_OtherParameters(t *testing.T) {
	t.Parallel()

	salt := []byte("0123456789abcdef")
	key := argon2.IDKey([]byte("cheap"), salt, 1, 1024, 1, 16)
	hash := fmt.Sprintf("$argon2id$v=%d$m=1024,t=1,p=1$%s$%s", argon2.Version,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))

	match, err := VerifyPassword("cheap", hash)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = VerifyPassword("expensive", hash)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not enough parts", "$argon2id$v=19"},
		{"no leading separator", "argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA$"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"invalid version format", "$argon2id$version=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"unsupported version", "$argon2id$v=16$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"invalid params format", "$argon2id$v=19$memory=65536$c2FsdA$aGFzaA"},
		{"invalid salt encoding", "$argon2id$v=19$m=65536,t=3,p=4$!!!invalid!!!$aGFzaA"},
		{"invalid key encoding", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$!!!invalid!!!"},
		{"empty key", "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := VerifyPassword("password", tt.hash)
			assert.ErrorIs(t, err, ErrInvalidHash)
			assert.ErrorIs(t, ValidateHash(tt.hash), ErrInvalidHash)
		})
	}
}

func TestDecodeHash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("test")
	require.NoError(t, err)

	d, err := decodeHash(hash)
	require.NoError(t, err)

	assert.Equal(t, uint32(65536), d.memory)
	assert.Equal(t, uint32(3), d.time)
	assert.Equal(t, uint8(4), d.threads)
	assert.Len(t, d.salt, saltLength)
	assert.Len(t, d.key, argonKeyLen)
}

func scriptedPrompter(answers ...string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return &Prompter{
		ReadPassword: func() ([]byte, error) {
			if len(answers) == 0 {
				return nil, errors.New("no more input")
			}
			a := answers[0]
			answers = answers[1:]
			return []byte(a), nil
		},
		Out: &out,
	}, &out
}

func TestPrompter_PromptAndConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		answers []string
		want    string
		wantErr error
	}{
		{"match", []string{"s3cret", "s3cret"}, "s3cret", nil},
		{"mismatch", []string{"s3cret", "secret"}, "", ErrPasswordMismatch},
		{"empty", []string{""}, "", ErrEmptyPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, out := scriptedPrompter(tt.answers...)
			got, err := p.PromptAndConfirm()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Confirm password: ")
		})
	}
}

func TestPrompter_ReadError(t *testing.T) {
	t.Parallel()

	p, _ := scriptedPrompter()
	_, err := p.Prompt("Password: ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read password")
}
