package auth

import (
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testBotToken = "12345:test-bot-token"

// buildInitData signs the given fields the way a Telegram client would and
// returns the encoded query string including the hash field.
func buildInitData(fields url.Values, botToken string) string {
	signed := url.Values{}
	for key, values := range fields {
		signed[key] = values
	}
	signed.Set("hash", signInitData(fields, botToken))
	return signed.Encode()
}

func fixedVerifier(botToken string, maxAge time.Duration, now time.Time) *Verifier {
	v := NewVerifier(botToken, maxAge)
	v.now = func() time.Time { return now }
	return v
}

func TestVerify_ValidPayload(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(now.Unix()-60))
	fields.Set("query_id", "AAAbbb")
	fields.Set("user", `{"id":4242,"first_name":"A"}`)

	v := fixedVerifier(testBotToken, time.Hour, now)
	userID, err := v.Verify(buildInitData(fields, testBotToken))
	assert.NoError(t, err)
	assert.Equal(t, int64(4242), userID)
}

func TestVerify_TamperedFieldRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(now.Unix()-60))
	fields.Set("user", `{"id":4242}`)
	initData := buildInitData(fields, testBotToken)

	parsed, err := url.ParseQuery(initData)
	assert.NoError(t, err)
	parsed.Set("user", `{"id":9999}`)

	v := fixedVerifier(testBotToken, time.Hour, now)
	_, err = v.Verify(parsed.Encode())
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestVerify_WrongBotTokenRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(now.Unix()-60))
	fields.Set("user", `{"id":4242}`)

	v := fixedVerifier("other:token", time.Hour, now)
	_, err := v.Verify(buildInitData(fields, testBotToken))
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestVerify_ExpiredEvenWithValidSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(now.Add(-2*time.Hour).Unix()))
	fields.Set("user", `{"id":4242}`)

	v := fixedVerifier(testBotToken, time.Hour, now)
	_, err := v.Verify(buildInitData(fields, testBotToken))
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorContains(t, err, "expired")
}

func TestVerify_MissingHash(t *testing.T) {
	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(time.Now().Unix()))
	fields.Set("user", `{"id":4242}`)

	v := NewVerifier(testBotToken, time.Hour)
	_, err := v.Verify(fields.Encode())
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestVerify_MissingAuthDate(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fields := url.Values{}
	fields.Set("user", `{"id":4242}`)

	v := fixedVerifier(testBotToken, time.Hour, now)
	_, err := v.Verify(buildInitData(fields, testBotToken))
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestVerify_MalformedUser(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	fields := url.Values{}
	fields.Set("auth_date", fmt.Sprint(now.Unix()-60))
	fields.Set("user", "not-json")

	v := fixedVerifier(testBotToken, time.Hour, now)
	_, err := v.Verify(buildInitData(fields, testBotToken))
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestVerify_EmptyInitData(t *testing.T) {
	v := NewVerifier(testBotToken, time.Hour)
	_, err := v.Verify("")
	assert.ErrorIs(t, err, ErrAuthentication)
}
