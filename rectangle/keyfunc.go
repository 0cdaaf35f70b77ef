package rectangle

import (
	"net"
	"net/http"
	"strings"
)

// KeyFunc identifica o cliente de uma requisição (rate limit e estatísticas).
type KeyFunc func(r *http.Request) string

// DefaultKeyFunc usa, em ordem: o header configurado, o primeiro IP de
// X-Forwarded-For (ou X-Real-IP) quando o proxy é confiável e o host remoto.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	keyHeader = http.CanonicalHeaderKey(strings.TrimSpace(keyHeader))

	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}
		if trustXFF {
			if ip := forwardedClient(r.Header); ip != "" {
				return ip
			}
		}
		return remoteHost(r.RemoteAddr)
	}
}

func forwardedClient(h http.Header) string {
	if xff := h.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := normalizeIP(first); ip != "" {
			return ip
		}
	}
	return normalizeIP(h.Get("X-Real-IP"))
}

// normalizeIP descarta valores que não são IP (lixo em header não vira chave).
func normalizeIP(s string) string {
	ip := net.ParseIP(strings.TrimSpace(s))
	if ip == nil {
		return ""
	}
	return ip.String()
}

func remoteHost(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil && host != "" {
		return host
	}
	if addr != "" {
		return addr
	}
	return "unknown"
}
