package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureHeader carries the hex-encoded HMAC-SHA256 of the raw request body.
const SignatureHeader = "x-cc-webhook-signature"

// VerifySignature reports whether signature is the lowercase hex HMAC-SHA256
// of body under the recipient's secret. It must be given the exact raw body
// bytes: verifying a re-serialized payload would accept forgeries whose
// re-serialization differs from the byte stream that was actually signed.
func VerifySignature(body []byte, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign computes the lowercase hex HMAC-SHA256 of body under secret. Used by
// tests and local tooling to produce valid deliveries.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
