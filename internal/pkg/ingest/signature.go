package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifySignature checks the HMAC-SHA256 hex signature of the exact raw
// request bytes. The signature header may carry a "sha256=" prefix.
//
// An empty secret disables verification entirely (the request passes); a
// configured secret with a missing or undecodable signature rejects. The raw
// body must be the bytes as received: re-serialized JSON is not guaranteed to
// be byte-identical to what the sender signed.
func VerifySignature(rawBody []byte, signatureHeader, secret string) bool {
	if strings.TrimSpace(secret) == "" {
		return true
	}

	sig := strings.TrimSpace(signatureHeader)
	sig = strings.TrimPrefix(sig, "sha256=")
	if sig == "" {
		return false
	}

	decoded, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return hmac.Equal(mac.Sum(nil), decoded)
}
