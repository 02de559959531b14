// Package auth verifies Telegram Mini App init data and extracts the
// authenticated user identity from it.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrAuthentication covers every init-data rejection: missing or malformed
// fields, an expired auth_date, or a signature mismatch. Callers branch on
// it with errors.Is; the wrapped detail is for logs only and must never be
// shown to the end user.
var ErrAuthentication = errors.New("init data authentication failed")

// DefaultMaxAge is the freshness window for the auth_date field.
const DefaultMaxAge = time.Hour

// initDataKeyLabel is the domain-separation label Telegram prescribes for
// deriving the signing key from the bot token.
const initDataKeyLabel = "WebAppData"

// Verifier checks the integrity and freshness of Mini App init data.
type Verifier struct {
	botToken string
	maxAge   time.Duration
	now      func() time.Time
}

// NewVerifier creates a Verifier for the given bot token. A non-positive
// maxAge falls back to DefaultMaxAge.
func NewVerifier(botToken string, maxAge time.Duration) *Verifier {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Verifier{
		botToken: botToken,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Verify validates a raw initData query string and returns the embedded user
// id. The signature covers every field except hash, serialized as
// lexicographically sorted name=value pairs joined by newlines, signed with
// HMAC-SHA256 under a key derived from the bot token. Freshness and
// signature validity are independent checks; both must pass.
func (v *Verifier) Verify(initData string) (int64, error) {
	if strings.TrimSpace(initData) == "" {
		return 0, fmt.Errorf("%w: missing init data", ErrAuthentication)
	}
	fields, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("%w: parse init data: %v", ErrAuthentication, err)
	}
	receivedHash := fields.Get("hash")
	if receivedHash == "" {
		return 0, fmt.Errorf("%w: missing hash", ErrAuthentication)
	}
	fields.Del("hash")

	authDate, err := strconv.ParseInt(fields.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: missing or invalid auth_date", ErrAuthentication)
	}
	if age := v.now().Unix() - authDate; age > int64(v.maxAge.Seconds()) {
		return 0, fmt.Errorf("%w: init data expired (%ds old)", ErrAuthentication, age)
	}

	expected := signInitData(fields, v.botToken)
	if !hmac.Equal([]byte(expected), []byte(receivedHash)) {
		return 0, fmt.Errorf("%w: signature mismatch", ErrAuthentication)
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(fields.Get("user")), &user); err != nil {
		return 0, fmt.Errorf("%w: malformed user field: %v", ErrAuthentication, err)
	}
	if user.ID == 0 {
		return 0, fmt.Errorf("%w: user id missing", ErrAuthentication)
	}
	return user.ID, nil
}

// signInitData computes the hex signature over the canonical serialization
// of fields (hash already removed).
func signInitData(fields url.Values, botToken string) string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, key+"="+fields.Get(key))
	}
	check := strings.Join(pairs, "\n")

	derived := hmac.New(sha256.New, []byte(initDataKeyLabel))
	derived.Write([]byte(botToken))
	mac := hmac.New(sha256.New, derived.Sum(nil))
	mac.Write([]byte(check))
	return hex.EncodeToString(mac.Sum(nil))
}
