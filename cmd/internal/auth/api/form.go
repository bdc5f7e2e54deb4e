package authapi

import (
	"errors"
	"net"
	"net/http"
	"strings"
)

var errBadForm = errors.New("malformed form body")

type credentialsForm struct {
	Username string
	Password string
}

// decodeForm reads an urlencoded body of at most maxBytes.
func decodeForm(w http.ResponseWriter, r *http.Request, maxBytes int64) (credentialsForm, error) {
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := r.ParseForm(); err != nil {
		return credentialsForm{}, errors.Join(errBadForm, err)
	}
	return credentialsForm{
		// Neither field is trimmed: usernames match exactly.
		Username: r.PostForm.Get("username"),
		Password: r.PostForm.Get("password"),
	}, nil
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}

// localPath reports whether p is a path on this site. Return-to values are
// recorded by the server but still pass through here before a redirect.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}
