package authapi

import (
	"net/http"
	"strings"
)

func (h *Handler) audit(r *http.Request, action string, attrs ...any) {
	base := []any{"action", action}
	if ip := clientIP(r, h.cfg.TrustProxy); ip != nil {
		base = append(base, "ip", ip.String())
	}
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		base = append(base, "user_agent", ua)
	}
	h.log.Info("auth.audit", append(base, attrs...)...)
}
