package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

const (
	// SignatureHeader and SignedAtHeader carry the message signature on AMQP
	// deliveries.
	SignatureHeader = "x-signature"
	SignedAtHeader  = "x-signed-at"
)

// MaxClockSkew is how far in the future a signing time may lie.
const MaxClockSkew = time.Minute

// EmptyBodyHash is the SHA256 hash of an empty body
const EmptyBodyHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// BuildStringToSign joins the routing key, the unix signing time and the body
// hash: ROUTING_KEY\nTIMESTAMP\nSHA256(body)
func BuildStringToSign(routingKey string, timestamp int64, body []byte) string {
	return fmt.Sprintf("%s\n%d\n%s", routingKey, timestamp, HashBodySHA256(body))
}

// SignMessage returns the hex HMAC-SHA256 of a queue message.
func SignMessage(secretKey, routingKey string, timestamp int64, body []byte) string {
	return ComputeHMACSHA256(secretKey, BuildStringToSign(routingKey, timestamp, body))
}

// VerifyMessage checks a signature produced by SignMessage. The headers come
// straight from the delivery, so both are parsed leniently.
func VerifyMessage(secretKey, routingKey string, signedAt interface{}, body []byte, signature interface{}) bool {
	sig, ok := signature.(string)
	if !ok || sig == "" {
		return false
	}

	timestamp, ok := parseSignedAt(signedAt)
	if !ok {
		return false
	}
	return SecureCompare(SignMessage(secretKey, routingKey, timestamp, body), sig)
}

// SignedWithin reports whether signedAt lies in [now-maxAge, now+MaxClockSkew].
// A message older than maxAge is treated as a replay.
func SignedWithin(signedAt interface{}, now time.Time, maxAge time.Duration) bool {
	timestamp, ok := parseSignedAt(signedAt)
	if !ok {
		return false
	}
	at := time.Unix(timestamp, 0)
	return !at.Before(now.Add(-maxAge)) && !at.After(now.Add(MaxClockSkew))
}

func parseSignedAt(signedAt interface{}) (int64, bool) {
	switch v := signedAt.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func ComputeHMACSHA256(secretKey, message string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}

// SecureCompare compares in constant time. Use it for every signature check.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func HashBodySHA256(body []byte) string {
	if len(body) == 0 {
		return EmptyBodyHash
	}
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
