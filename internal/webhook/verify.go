package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader = "X-Market22-Signature"
	TimestampHeader = "X-Market22-Timestamp"

	DefaultReplayWindow = 3 * time.Minute
)

// RejectReason identifies why a delivery failed verification.
type RejectReason string

const (
	ReasonMissingHeader          RejectReason = "MISSING_HEADER"
	ReasonInvalidTimestamp       RejectReason = "INVALID_TIMESTAMP"
	ReasonStaleOrFutureTimestamp RejectReason = "STALE_OR_FUTURE_TIMESTAMP"
	ReasonSignatureMismatch      RejectReason = "SIGNATURE_MISMATCH"
)

var (
	ErrMissingHeader          = &RejectError{Reason: ReasonMissingHeader}
	ErrInvalidTimestamp       = &RejectError{Reason: ReasonInvalidTimestamp}
	ErrStaleOrFutureTimestamp = &RejectError{Reason: ReasonStaleOrFutureTimestamp}
	ErrSignatureMismatch      = &RejectError{Reason: ReasonSignatureMismatch}
)

// RejectError is returned by Verify for every rejected delivery.
// Match on Reason with errors.As, or on the Err* values with errors.Is.
type RejectError struct {
	Reason RejectReason
}

func (e *RejectError) Error() string {
	switch e.Reason {
	case ReasonMissingHeader:
		return "webhook: signature or timestamp header missing"
	case ReasonInvalidTimestamp:
		return "webhook: timestamp header is not an integer"
	case ReasonStaleOrFutureTimestamp:
		return "webhook: timestamp outside replay window"
	case ReasonSignatureMismatch:
		return "webhook: signature mismatch"
	default:
		return "webhook: rejected (" + string(e.Reason) + ")"
	}
}

func (e *RejectError) Is(target error) bool {
	t, ok := target.(*RejectError)
	return ok && t.Reason == e.Reason
}

// ReasonOf returns the reject reason carried by err, or "" if err is not a rejection.
func ReasonOf(err error) RejectReason {
	var re *RejectError
	if errors.As(err, &re) {
		return re.Reason
	}
	return ""
}

// Verify checks that a delivery was signed by Market22 with secret and is fresh relative to now.
// Checks run in order: headers present, timestamp parses, timestamp within window, signature matches.
// A window <= 0 uses DefaultReplayWindow.
func Verify(signatureHeader, timestampHeader string, rawBody []byte, secret string, now time.Time, window time.Duration) error {
	signatureHeader = strings.TrimSpace(signatureHeader)
	timestampHeader = strings.TrimSpace(timestampHeader)
	if signatureHeader == "" || timestampHeader == "" {
		return ErrMissingHeader
	}

	ts, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return ErrInvalidTimestamp
	}

	if window <= 0 {
		window = DefaultReplayWindow
	}
	skew := now.UnixMilli() - ts
	if skew < 0 {
		skew = -skew
	}
	// Negative skew here means the subtraction overflowed; treat it as out of window.
	if skew < 0 || skew > window.Milliseconds() {
		return ErrStaleOrFutureTimestamp
	}

	if secret == "" {
		return ErrSignatureMismatch
	}
	expected := Sign(secret, timestampHeader, rawBody)
	if !constantTimeEqual(expected, signatureHeader) {
		return ErrSignatureMismatch
	}
	return nil
}

// Sign returns hex(HMAC-SHA256(secret, timestamp || body)).
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(timestamp))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// constantTimeEqual reports a length mismatch immediately, then folds every byte
// so the running time does not depend on the first differing position.
func constantTimeEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := 0; i < len(a); i++ {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}

// Verifier binds a product's secret and replay window for HTTP use.
type Verifier struct {
	Secret string
	Window time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (v Verifier) VerifyRequest(h http.Header, body []byte) error {
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}
	return Verify(h.Get(SignatureHeader), h.Get(TimestampHeader), body, v.Secret, now, v.Window)
}
