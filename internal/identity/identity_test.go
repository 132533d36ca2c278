package identity

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePrecedence(t *testing.T) {
	cases := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "device id wins over ip headers",
			req: Request{Headers: map[string][]string{
				HeaderDeviceID:     {"ios-8f2c"},
				HeaderForwardedFor: {"203.0.113.7"},
			}, RemoteAddr: "10.0.0.1"},
			want: "ios-8f2c",
		},
		{
			name: "first forwarded hop, trimmed",
			req: Request{Headers: map[string][]string{
				HeaderForwardedFor: {" 203.0.113.7 , 10.0.0.2"},
				HeaderRealIP:       {"198.51.100.1"},
			}},
			want: "203.0.113.7",
		},
		{
			name: "repeated forwarded header uses first instance",
			req: Request{Headers: map[string][]string{
				HeaderForwardedFor: {"203.0.113.9, 10.0.0.2", "192.0.2.1"},
			}},
			want: "203.0.113.9",
		},
		{
			name: "real ip",
			req: Request{Headers: map[string][]string{
				HeaderRealIP: {"198.51.100.1"},
			}, RemoteAddr: "10.0.0.1"},
			want: "198.51.100.1",
		},
		{
			name: "header names are case-insensitive",
			req: Request{Headers: map[string][]string{
				"x-real-ip": {"198.51.100.2"},
			}},
			want: "198.51.100.2",
		},
		{
			name: "empty forwarded falls through",
			req: Request{Headers: map[string][]string{
				HeaderForwardedFor: {" "},
			}, RemoteAddr: "10.0.0.1"},
			want: "10.0.0.1",
		},
		{
			name: "unknown",
			req:  Request{},
			want: Unknown,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Resolve(tc.req))
		})
	}
}

func TestResolveRejectsOversizedDeviceID(t *testing.T) {
	long := strings.Repeat("a", maxTokenLen+1)
	bounded := strings.Repeat("b", maxTokenLen)

	cases := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "device id",
			req: Request{
				Headers:    map[string][]string{HeaderDeviceID: {long}},
				RemoteAddr: "10.0.0.1",
			},
			want: "10.0.0.1",
		},
		{
			name: "forwarded for falls through to real ip",
			req: Request{
				Headers: map[string][]string{
					HeaderForwardedFor: {long + ", 10.0.0.9"},
					HeaderRealIP:       {"10.0.0.2"},
				},
				RemoteAddr: "10.0.0.1",
			},
			want: "10.0.0.2",
		},
		{
			name: "real ip falls through to socket",
			req: Request{
				Headers:    map[string][]string{HeaderRealIP: {long}},
				RemoteAddr: "10.0.0.1",
			},
			want: "10.0.0.1",
		},
		{
			name: "at the bound",
			req: Request{
				Headers:    map[string][]string{HeaderForwardedFor: {bounded}},
				RemoteAddr: "10.0.0.1",
			},
			want: bounded,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.req)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), maxTokenLen)
		})
	}
}

func TestIPIgnoresDeviceID(t *testing.T) {
	r := Request{
		Headers: map[string][]string{
			HeaderDeviceID:     {"ios-8f2c"},
			HeaderForwardedFor: {"203.0.113.7, 10.0.0.1"},
		},
		RemoteAddr: "10.0.0.1",
	}
	assert.Equal(t, "ios-8f2c", Resolve(r))
	assert.Equal(t, "203.0.113.7", IP(r))
	assert.Equal(t, "10.0.0.1", IP(Request{RemoteAddr: "10.0.0.1"}))
	assert.Equal(t, Unknown, IP(Request{}))
}

func TestFromCtx(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(FromCtx(c))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderForwardedFor, "203.0.113.7, 10.0.0.2")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "203.0.113.7", string(body))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderDeviceID, "android-1")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "android-1", string(body))
}
