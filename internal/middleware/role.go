package middleware

import (
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/httpcontext"
)

// RoleGuard lets a request through only when the authenticated principal's
// role is in the policy's allow-list. It must run after SessionAuth.
func RoleGuard(policy Policy, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	denied := domain.NewError(domain.ErrCodeForbidden, policy.Message)

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			principal, ok := httpcontext.Principal(ctx)
			if !ok {
				reject(ctx, fasthttp.StatusUnauthorized, domain.ErrNoSessionProvided)
				return
			}
			if !policy.Allows(principal.Role) {
				logger.Info("role not permitted",
					zap.String("policy", policy.Name),
					zap.String("user_id", principal.UserID),
					zap.String("request_id", httpcontext.RequestID(ctx)))
				reject(ctx, fasthttp.StatusForbidden, denied)
				return
			}
			next(ctx)
		}
	}
}
