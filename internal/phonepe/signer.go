package phonepe

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
)

// Gateway API paths. These strings are part of every signature: any drift
// between the path that is signed and the path that is called invalidates
// the checksum on the gateway side.
const (
	payPath        = "/pg/v1/pay"
	statusPathBase = "/pg/v1/status/"
)

// Signer computes and verifies the X-VERIFY checksum:
// hex(SHA256(signingString)) + "###" + saltIndex.
type Signer struct {
	saltKey   string
	saltIndex int
}

func NewSigner(saltKey string, saltIndex int) Signer {
	return Signer{saltKey: saltKey, saltIndex: saltIndex}
}

func (s Signer) Sign(signingString string) string {
	sum := sha256.Sum256([]byte(signingString))
	return hex.EncodeToString(sum[:]) + "###" + strconv.Itoa(s.saltIndex)
}

// Verify recomputes the checksum and compares the full hex###index value.
// A differing salt index fails verification like any other mismatch.
func (s Signer) Verify(signingString, checksum string) bool {
	want := s.Sign(signingString)
	return subtle.ConstantTimeCompare([]byte(want), []byte(checksum)) == 1
}

// paySigningString covers the base64 payload plus the pay path.
func (s Signer) paySigningString(base64Payload string) string {
	return base64Payload + payPath + s.saltKey
}

// statusSigningString covers the full status path for one transaction.
func (s Signer) statusSigningString(merchantID, transactionID string) string {
	return statusPathBase + merchantID + "/" + transactionID + s.saltKey
}

// webhookSigningString covers only the response blob: the gateway signs the
// payload it returns, with no path component.
func (s Signer) webhookSigningString(base64Body string) string {
	return base64Body + s.saltKey
}
