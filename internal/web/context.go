package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/sheets/internal/core"
	"github.com/JonMunkholm/sheets/internal/logging"
)

// WithRequestMetadata adds IP, User-Agent and the session id to ctx for
// audit and request logging.
func WithRequestMetadata(ctx context.Context, r *http.Request, sessionID string) context.Context {
	ctx = core.ContextWithIPAddress(ctx, clientIP(r)) // RemoteAddr already processed by TrustedRealIP
	ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
	if sessionID != "" {
		ctx = logging.ContextWithSession(ctx, sessionID)
	}
	return ctx
}
