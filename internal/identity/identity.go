// Package identity derives the per-client key used for rate limiting and vote ownership.
package identity

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	HeaderDeviceID     = "X-Device-ID"
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"

	Unknown = "unknown"

	// maxTokenLen keeps header-derived identifiers inside the votes.voter column.
	maxTokenLen = 128
)

// Request is the metadata the resolver looks at. Header values keep every
// instance of a repeated header, in arrival order.
type Request struct {
	Headers    map[string][]string
	RemoteAddr string
}

// Resolve returns the voter identifier for a request. Precedence: device id,
// first forwarded-for hop, real-ip, socket address, then "unknown". Header
// tokens longer than maxTokenLen are skipped.
func Resolve(r Request) string {
	if id := token(r.Headers, HeaderDeviceID); id != "" {
		return id
	}
	return IP(r)
}

// IP is Resolve without the device id, for callers that need a network address.
func IP(r Request) string {
	if ip := token(r.Headers, HeaderForwardedFor); ip != "" {
		return ip
	}
	if ip := token(r.Headers, HeaderRealIP); ip != "" {
		return ip
	}
	if addr := strings.TrimSpace(r.RemoteAddr); addr != "" {
		return addr
	}
	return Unknown
}

// FromCtx resolves the identifier of a fiber request.
func FromCtx(c *fiber.Ctx) string {
	return Resolve(requestOf(c))
}

// IPFromCtx resolves the client address of a fiber request.
func IPFromCtx(c *fiber.Ctx) string {
	return IP(requestOf(c))
}

func requestOf(c *fiber.Ctx) Request {
	var remote string
	if ip := c.Context().RemoteIP(); ip != nil && !ip.IsUnspecified() {
		remote = ip.String()
	}
	return Request{
		Headers:    c.GetReqHeaders(),
		RemoteAddr: remote,
	}
}

func token(h map[string][]string, name string) string {
	v := firstToken(header(h, name))
	if len(v) > maxTokenLen {
		return ""
	}
	return v
}

// header looks a name up case-insensitively; fiber and net/http canonicalise differently.
func header(h map[string][]string, name string) []string {
	if v, ok := h[name]; ok {
		return v
	}
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

func firstToken(values []string) string {
	if len(values) == 0 {
		return ""
	}
	v := values[0]
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
