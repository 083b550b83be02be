package middleware

import (
	"encoding/json"
	"runtime/debug"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/api/transport"
	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/httpcontext"
)

var errInternal = domain.NewError(domain.ErrCodeInternal, "Internal server error")

func reject(ctx *fasthttp.RequestCtx, status int, err *domain.Error) {
	body, _ := json.Marshal(transport.NewError(string(err.Code), err.Message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

// Recover turns a panicking handler into a generic 500.
func Recover(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic",
						zap.Any("panic", r),
						zap.ByteString("stack", debug.Stack()),
						zap.String("request_id", httpcontext.RequestID(ctx)))
					ctx.ResetBody()
					reject(ctx, fasthttp.StatusInternalServerError, errInternal)
				}
			}()
			next(ctx)
		}
	}
}

// AccessLog writes one entry per request after it completes.
func AccessLog(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			start := time.Now()
			next(ctx)
			logger.Info("request",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", ctx.Response.StatusCode()),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", httpcontext.RequestID(ctx)))
		}
	}
}

// Chain wraps h so that the first middleware runs first.
func Chain(h fasthttp.RequestHandler, mws ...func(fasthttp.RequestHandler) fasthttp.RequestHandler) fasthttp.RequestHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
