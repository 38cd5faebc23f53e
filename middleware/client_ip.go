package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// clientIP keys rate limits and request logs. The API sits behind a single
// reverse proxy that appends to X-Forwarded-For, so the leftmost entry is the
// caller. Header values that are not IP addresses are ignored.
func clientIP(c *gin.Context) string {
	if first, _, _ := strings.Cut(c.GetHeader("X-Forwarded-For"), ","); first != "" {
		if ip := parseIP(first); ip != "" {
			return ip
		}
	}
	if ip := parseIP(c.GetHeader("X-Real-IP")); ip != "" {
		return ip
	}

	addr := c.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return addr
}

func parseIP(raw string) string {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return ""
	}
	return ip.String()
}
