package httpcontext

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/fastygo/accountdesk/domain"
	appLogger "github.com/fastygo/accountdesk/pkg/logger"
)

// Key represents a context value key exported for reuse.
type Key string

const (
	KeyRemoteAddr Key = "remote_addr"
	KeyUserAgent  Key = "user_agent"
	KeyPrincipal  Key = "principal"
)

// fasthttp user value keys.
const (
	userValueRequestID = "httpcontext.request_id"
	userValuePrincipal = "httpcontext.principal"
	userValueSessionID = "httpcontext.session_id"
)

// Adapter converts fasthttp.RequestCtx into a stdlib context with deadlines and metadata.
type Adapter struct {
	timeout time.Duration
}

// NewAdapter constructs a new Adapter using the provided timeout.
func NewAdapter(timeout time.Duration) *Adapter {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Adapter{
		timeout: timeout,
	}
}

// Attach creates a context with timeout derived from the adapter and enriches
// it with request metadata and, once authenticated, the principal. Repeated
// calls for the same request reuse the same request ID.
func (a *Adapter) Attach(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	timeout := 5 * time.Second
	if a != nil {
		timeout = a.timeout
	}
	stdCtx, cancel := context.WithTimeout(context.Background(), timeout)

	reqID := RequestID(ctx)
	stdCtx = appLogger.ContextWithRequestID(stdCtx, reqID)

	if remoteAddr := ctx.RemoteAddr(); remoteAddr != nil {
		stdCtx = context.WithValue(stdCtx, KeyRemoteAddr, remoteAddr.String())
	}
	if ua := string(ctx.Request.Header.UserAgent()); ua != "" {
		stdCtx = context.WithValue(stdCtx, KeyUserAgent, ua)
	}
	if principal, ok := Principal(ctx); ok {
		stdCtx = context.WithValue(stdCtx, KeyPrincipal, principal)
	}

	return stdCtx, cancel
}

// RequestID returns the request ID, taking X-Request-ID from the client when
// present and generating one otherwise. The ID is echoed in the response.
func RequestID(ctx *fasthttp.RequestCtx) string {
	if ctx == nil {
		return uuid.NewString()
	}
	if id, ok := ctx.UserValue(userValueRequestID).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	if header := string(ctx.Request.Header.Peek("X-Request-ID")); strings.TrimSpace(header) != "" {
		id = header
	}
	ctx.SetUserValue(userValueRequestID, id)
	ctx.Response.Header.Set("X-Request-ID", id)
	return id
}

// SetPrincipal records the authenticated identity and the session it came from.
func SetPrincipal(ctx *fasthttp.RequestCtx, sessionID string, principal domain.Principal) {
	ctx.SetUserValue(userValuePrincipal, principal)
	ctx.SetUserValue(userValueSessionID, sessionID)
}

// Principal returns the identity attached by the session middleware.
func Principal(ctx *fasthttp.RequestCtx) (domain.Principal, bool) {
	principal, ok := ctx.UserValue(userValuePrincipal).(domain.Principal)
	return principal, ok
}

// SessionID returns the bearer session that authenticated the request.
func SessionID(ctx *fasthttp.RequestCtx) string {
	id, _ := ctx.UserValue(userValueSessionID).(string)
	return id
}

// PrincipalFromContext reads the principal placed by Attach.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	principal, ok := ctx.Value(KeyPrincipal).(domain.Principal)
	return principal, ok
}
