package router

import (
	"net"
	"net/http"
)

// middlewareLoopback rejects requests whose peer address is not a loopback
// address. Forwarding headers are ignored so a proxy cannot widen access.
func middlewareLoopback(enabled bool) Middleware {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isLoopback(r.RemoteAddr) {
				writeJSON(w, errorResponse{Message: "loopback access only"}, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
