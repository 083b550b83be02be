package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/fastygo/accountdesk/api/transport"
	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/internal/infrastructure/monitor"
	"github.com/fastygo/accountdesk/pkg/httpcontext"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"unauthorized", domain.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"not found", domain.ErrUserNotFound, http.StatusNotFound, domain.ErrUserNotFound.Message},
		{"conflict", domain.ErrUsernameTaken, http.StatusConflict, domain.ErrUsernameTaken.Message},
		{"invalid", domain.ErrWeakPassword, http.StatusBadRequest, domain.ErrWeakPassword.Message},
		{"unavailable hides cause", domain.StoreUnavailable(errors.New("dial tcp 10.0.0.1:6379")), http.StatusInternalServerError, "Internal server error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, message := mapError(tc.err)
			if status != tc.status || message != tc.message {
				t.Fatalf("mapError = (%d, %q), want (%d, %q)", status, message, tc.status, tc.message)
			}
		})
	}
}

type fixedStatus monitor.Status

func (f fixedStatus) GetStatus() monitor.Status {
	return monitor.Status(f)
}

func TestHealthDegraded(t *testing.T) {
	h := NewHealthHandler(fixedStatus{Store: false, Driver: "bolt"}, httpcontext.NewAdapter(time.Second), nil)
	ctx := &fasthttp.RequestCtx{}
	h.Check(ctx)

	if ctx.Response.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", ctx.Response.StatusCode())
	}
	var env transport.Envelope
	if err := json.Unmarshal(ctx.Response.Body(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Code != "DEGRADED" {
		t.Fatalf("code = %q, want DEGRADED", env.Code)
	}
}

func TestDecodeRejectsBrokenJSON(t *testing.T) {
	h := NewAuthHandler(nil, httpcontext.NewAdapter(time.Second), nil)
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetBody([]byte("{not json"))

	h.Login(ctx)

	if ctx.Response.StatusCode() != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", ctx.Response.StatusCode())
	}
}

func TestMeWithoutPrincipal(t *testing.T) {
	h := NewAuthHandler(nil, httpcontext.NewAdapter(time.Second), nil)
	ctx := &fasthttp.RequestCtx{}
	h.Me(ctx)

	if ctx.Response.StatusCode() != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ctx.Response.StatusCode())
	}
}
