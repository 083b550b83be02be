package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/accountdesk/api/transport"
	"github.com/fastygo/accountdesk/domain"
	"github.com/fastygo/accountdesk/pkg/httpcontext"
	"github.com/fastygo/accountdesk/repository"
	accountUC "github.com/fastygo/accountdesk/usecase/account"
)

type AccountHandler struct {
	baseHandler
	uc *accountUC.UseCase
}

func NewAccountHandler(uc *accountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List MT5 accounts
// @Tags accounts
// @Param server query string false "server name"
// @Param status query string false "active or disabled"
// @Param owner_id query string false "owning user"
// @Router /api/accounts [get]
func (h *AccountHandler) List(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	filter := repository.AccountFilter{
		Server:  string(args.Peek("server")),
		Status:  string(args.Peek("status")),
		OwnerID: string(args.Peek("owner_id")),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	accounts, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, accounts)
}

// @Summary Get an MT5 account
// @Tags accounts
// @Router /api/accounts/{id} [get]
func (h *AccountHandler) Get(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.Get(stdCtx, pathParam(ctx, "id"))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}

// @Summary Register an MT5 account
// @Tags accounts
// @Router /api/accounts [post]
func (h *AccountHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.AccountRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.Create(stdCtx, accountFromRequest("", req))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, account)
}

// @Summary Replace an MT5 account
// @Tags accounts
// @Router /api/accounts/{id} [put]
func (h *AccountHandler) Update(ctx *fasthttp.RequestCtx) {
	var req transport.AccountRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	account, err := h.uc.Update(stdCtx, accountFromRequest(pathParam(ctx, "id"), req))
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, account)
}

// @Summary Delete an MT5 account
// @Tags accounts
// @Router /api/accounts/{id} [delete]
func (h *AccountHandler) Delete(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	id := pathParam(ctx, "id")
	if err := h.uc.Delete(stdCtx, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"deleted": id})
}

func accountFromRequest(id string, req transport.AccountRequest) *domain.Account {
	return &domain.Account{
		ID:       id,
		Login:    req.Login,
		Server:   req.Server,
		Name:     req.Name,
		Group:    req.Group,
		Leverage: req.Leverage,
		Currency: req.Currency,
		Balance:  req.Balance,
		Status:   req.Status,
		OwnerID:  req.OwnerID,
	}
}
