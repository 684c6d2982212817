package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerifyMessage(t *testing.T) {
	body := []byte(`{"user_id":"alice","timestamp":1700000000}`)
	sig := SignMessage("secret", "blob.delete_user", 1700000000, body)

	assert.Len(t, sig, 64)
	assert.True(t, VerifyMessage("secret", "blob.delete_user", int64(1700000000), body, sig))
	assert.True(t, VerifyMessage("secret", "blob.delete_user", "1700000000", body, sig))

	assert.False(t, VerifyMessage("other", "blob.delete_user", int64(1700000000), body, sig))
	assert.False(t, VerifyMessage("secret", "blob.delete_object", int64(1700000000), body, sig))
	assert.False(t, VerifyMessage("secret", "blob.delete_user", int64(1700000001), body, sig))
	assert.False(t, VerifyMessage("secret", "blob.delete_user", int64(1700000000), []byte(`{"user_id":"bob"}`), sig))
	assert.False(t, VerifyMessage("secret", "blob.delete_user", nil, body, sig))
	assert.False(t, VerifyMessage("secret", "blob.delete_user", int64(1700000000), body, nil))
}

func TestHashBodySHA256Empty(t *testing.T) {
	assert.Equal(t, EmptyBodyHash, HashBodySHA256(nil))
	assert.NotEqual(t, EmptyBodyHash, HashBodySHA256([]byte("x")))
}

func TestSignedWithin(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.True(t, SignedWithin(int64(1700000000), now, time.Hour))
	assert.True(t, SignedWithin(int64(1700000000-3600), now, time.Hour))
	assert.True(t, SignedWithin("1700000030", now, time.Hour))

	assert.False(t, SignedWithin(int64(1700000000-3601), now, time.Hour))
	assert.False(t, SignedWithin(int64(1700000000+120), now, time.Hour))
	assert.False(t, SignedWithin("yesterday", now, time.Hour))
	assert.False(t, SignedWithin(nil, now, time.Hour))
}
