package geetest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func challenge() *Challenge {
	return &Challenge{LotNumber: "lot-1", CaptchaOutput: "out", PassToken: "pass", GenTime: "1700000000"}
}

func TestValidateSignsAndAccepts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "lot-1", r.PostForm.Get("lot_number"))
		assert.Equal(t, "captcha-id", r.PostForm.Get("captcha_id"))
		assert.Equal(t, hmacEncode("secret", "lot-1"), r.PostForm.Get("sign_token"))
		_, _ = w.Write([]byte(`{"status":"success","result":"success"}`))
	}))
	defer srv.Close()

	c := New("captcha-id", "secret").WithURL(srv.URL)
	assert.True(t, c.Validate(context.Background(), challenge(), "203.0.113.7"))
}

func TestValidateRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","result":"fail","reason":"pass_token expire"}`))
	}))
	defer srv.Close()

	c := New("captcha-id", "secret").WithURL(srv.URL)
	assert.False(t, c.Validate(context.Background(), challenge(), "203.0.113.7"))
}

func TestValidateMissingChallenge(t *testing.T) {
	c := New("captcha-id", "secret")
	assert.False(t, c.Validate(context.Background(), nil, ""))
	assert.False(t, c.Validate(context.Background(), &Challenge{LotNumber: "x"}, ""))
}

func TestValidateFailsOpenOnOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New("captcha-id", "secret").WithURL(srv.URL)
	assert.True(t, c.Validate(context.Background(), challenge(), ""))

	srv.Close()
	assert.True(t, c.Validate(context.Background(), challenge(), ""))
}

func TestHmacEncode(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		hmacEncode("key", "The quick brown fox jumps over the lazy dog"))
}
