package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/httpcontext"
	appLogger "github.com/fastygo/accountdesk/pkg/logger"
)

const bearerPrefix = "Bearer "

// SessionValidator is the part of the session store the middleware needs.
type SessionValidator interface {
	ValidateAndGet(ctx context.Context, id string) (*domain.Session, error)
}

// SessionAuth authenticates every request with exactly one session lookup and
// attaches the principal for downstream handlers and guards. Rejections are
// terminal for the request.
func SessionAuth(sessions SessionValidator, adapter *httpcontext.Adapter, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			stdCtx, cancel := adapter.Attach(ctx)
			defer cancel()
			log := appLogger.WithRequestID(stdCtx, logger)

			token, ok := bearerToken(ctx)
			if !ok {
				log.Debug("request without session")
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNoSessionProvided)
				return
			}

			sess, err := sessions.ValidateAndGet(stdCtx, token)
			if err != nil {
				status, dErr := classify(err)
				if status == fasthttp.StatusInternalServerError {
					log.Error("session lookup failed", zap.Error(err))
				} else {
					log.Debug("session rejected", zap.String("reason", dErr.Message))
				}
				reject(ctx, status, dErr)
				return
			}

			httpcontext.SetPrincipal(ctx, sess.ID, sess.Principal())
			next(ctx)
		}
	}
}

// bearerToken extracts the token after the literal "Bearer " prefix. An empty
// token counts as no session.
func bearerToken(ctx *fasthttp.RequestCtx) (string, bool) {
	header := string(ctx.Request.Header.Peek(fasthttp.HeaderAuthorization))
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

func classify(err error) (int, *domain.Error) {
	switch {
	case errors.Is(err, domain.ErrSessionExpired):
		return fasthttp.StatusUnauthorized, domain.ErrSessionExpired
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionMalformed):
		return fasthttp.StatusUnauthorized, domain.ErrSessionNotFound
	default:
		return fasthttp.StatusInternalServerError, errInternal
	}
}
