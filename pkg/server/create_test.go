package server

import (
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"murphy/internal/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, handler fiber.Handler) (int, map[string]string, string) {
	t.Helper()
	app := NewFiber(Options{})
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body, resp.Header.Get(fiber.HeaderRetryAfter)
}

func TestErrorHandlerMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{apperr.InvalidArgument("bad"), 400, "bad"},
		{errors.Wrap(apperr.NotFound("Law not found"), "ctx"), 404, "Law not found"},
		{apperr.Persistence(errors.New("disk"), "Failed to record vote"), 500, "Failed to record vote"},
		{errors.New("surprise"), 500, "Internal server error"},
		{fiber.NewError(fiber.StatusMethodNotAllowed, "nope"), 405, "nope"},
	}
	for _, tc := range cases {
		status, body, _ := call(t, func(*fiber.Ctx) error { return tc.err })
		assert.Equal(t, tc.status, status, tc.msg)
		assert.Equal(t, tc.msg, body["error"])
	}
}

func TestErrorHandlerRetryAfter(t *testing.T) {
	reset := time.Now().Add(42 * time.Second)
	status, body, retry := call(t, func(*fiber.Ctx) error { return apperr.RateLimited(reset) })

	assert.Equal(t, 429, status)
	assert.NotEmpty(t, body["error"])
	secs, err := strconv.Atoi(retry)
	require.NoError(t, err)
	assert.InDelta(t, 42, secs, 1)
}

func TestRecoverReturns500(t *testing.T) {
	status, body, _ := call(t, func(*fiber.Ctx) error { panic("boom") })
	assert.Equal(t, 500, status)
	assert.NotEmpty(t, body["error"])
}
