package gateway

import (
	"io"
	"net"
	"net/http"
	"strings"
)

// MaxBodyBytes caps request bodies read by HTTPHandler.
const MaxBodyBytes = 1 << 20

// FromHTTP converts an inbound net/http request. The source IP comes from
// RemoteAddr, so run chi's RealIP middleware in front when behind a proxy.
func FromHTTP(r *http.Request) (Request, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
	if err != nil {
		return Request{}, err
	}

	headers := make(map[string]string, len(r.Header))
	for k, v := range r.Header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}

	return Request{
		Method:   strings.ToUpper(r.Method),
		Headers:  headers,
		Body:     body,
		SourceIP: remoteIP(r.RemoteAddr),
	}, nil
}

// HTTPHandler adapts h to net/http.
func HTTPHandler(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := FromHTTP(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"success":false,"error":"Invalid request"}`))
			return
		}
		WriteHTTP(w, h.Serve(r.Context(), req))
	})
}

// WriteHTTP writes resp to w.
func WriteHTTP(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}

func remoteIP(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
