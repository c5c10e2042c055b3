package middleware

import (
	"net"
	"net/http"
	"net/netip"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

// ClientIP returns the caller address without its port. TrustedRealIP has
// already rewritten RemoteAddr when the request came through a known proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// TrustedRealIP applies chi's RealIP only to requests whose peer address is
// one of the given proxies (IPs or CIDRs). Everyone else keeps RemoteAddr, so
// a client cannot pick the address its cooldowns and limits are keyed on.
func TrustedRealIP(proxies []string) func(http.Handler) http.Handler {
	prefixes := parseProxyPrefixes(proxies)
	return func(next http.Handler) http.Handler {
		if len(prefixes) == 0 {
			return next
		}
		withRealIP := chimiddleware.RealIP(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if fromTrustedProxy(r, prefixes) {
				withRealIP.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func parseProxyPrefixes(proxies []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(proxies))
	for _, p := range proxies {
		if prefix, err := netip.ParsePrefix(p); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		if addr, err := netip.ParseAddr(p); err == nil {
			addr = addr.Unmap()
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return out
}

func fromTrustedProxy(r *http.Request, prefixes []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ClientIP(r))
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientContext makes the caller address available to services, which key
// their abuse cooldowns on it.
func ClientContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(service.WithClientIP(r.Context(), ClientIP(r))))
	})
}
