package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brickvest/brickvest/internal/pkg/middleware"
	"github.com/brickvest/brickvest/internal/pkg/models"
	"github.com/brickvest/brickvest/internal/utils"
	"github.com/brickvest/brickvest/services/payment"
	"github.com/brickvest/brickvest/services/payment/usecase"
)

// PaymentHandler exposes payment methods, transactions and the investor
// agreement over HTTP.
type PaymentHandler struct {
	paymentUC payment.PaymentUC
}

// NewPaymentHandler creates the payment HTTP handler.
func NewPaymentHandler(paymentUC payment.PaymentUC) *PaymentHandler {
	return &PaymentHandler{paymentUC: paymentUC}
}

// RegisterRoutes mounts the payment routes on an authenticated group.
func (h *PaymentHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/payment-methods", h.GetPaymentMethods)
	g.PUT("/payment-methods/default", h.SetDefaultPaymentMethod)

	g.POST("/payment-methods/cards", h.AddCreditCard)
	g.GET("/payment-methods/cards", h.GetCreditCards)
	g.DELETE("/payment-methods/cards/:id", h.DeleteCreditCard)

	g.POST("/payment-methods/banks", h.AddBankAccount)
	g.GET("/payment-methods/banks", h.GetBankAccounts)
	g.DELETE("/payment-methods/banks/:id", h.DeleteBankAccount)

	g.GET("/transactions", h.GetTransactions)
	g.PATCH("/transactions/:id/status", h.UpdateTransactionStatus)

	g.POST("/agreement", h.AcceptInvestorAgreement)
	g.GET("/agreement", h.GetInvestorAgreement)
}

func (h *PaymentHandler) AddCreditCard(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var req payment.AddCreditCardRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	card, err := h.paymentUC.AddCreditCard(c.Request().Context(), userID, &req)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "card added", card)
}

func (h *PaymentHandler) GetCreditCards(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	cards, err := h.paymentUC.GetCreditCards(c.Request().Context(), userID)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", cards)
}

func (h *PaymentHandler) DeleteCreditCard(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	if err := h.paymentUC.DeleteCreditCard(c.Request().Context(), userID, c.Param("id")); err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "card deleted", nil)
}

func (h *PaymentHandler) AddBankAccount(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var req payment.AddBankAccountRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	account, err := h.paymentUC.AddBankAccount(c.Request().Context(), userID, &req)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusCreated, "bank account linked", account)
}

func (h *PaymentHandler) GetBankAccounts(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	accounts, err := h.paymentUC.GetBankAccounts(c.Request().Context(), userID)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", accounts)
}

func (h *PaymentHandler) DeleteBankAccount(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	if err := h.paymentUC.DeleteBankAccount(c.Request().Context(), userID, c.Param("id")); err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "bank account removed", nil)
}

type setDefaultRequest struct {
	ID   string                   `json:"id"`
	Type models.PaymentMethodType `json:"type"`
}

func (h *PaymentHandler) SetDefaultPaymentMethod(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var req setDefaultRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	if err := h.paymentUC.SetDefaultPaymentMethod(c.Request().Context(), userID, req.ID, req.Type); err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "default payment method updated", nil)
}

func (h *PaymentHandler) GetPaymentMethods(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	methods, err := h.paymentUC.GetPaymentMethods(c.Request().Context(), userID)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", methods)
}

func (h *PaymentHandler) GetTransactions(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	txns, err := h.paymentUC.GetTransactions(c.Request().Context(), userID)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", txns)
}

type updateStatusRequest struct {
	Status models.TransactionStatus `json:"status"`
}

func (h *PaymentHandler) UpdateTransactionStatus(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	if err := h.paymentUC.UpdateTransactionStatus(c.Request().Context(), userID, c.Param("id"), req.Status); err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "transaction updated", nil)
}

type acceptAgreementRequest struct {
	Version string `json:"version"`
	Content string `json:"content"`
}

func (h *PaymentHandler) AcceptInvestorAgreement(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var req acceptAgreementRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	agreement, err := h.paymentUC.AcceptInvestorAgreement(c.Request().Context(), userID, req.Version, req.Content)
	if err != nil {
		return paymentErrorResponse(c, err)
	}
	return utils.SuccessResponse(c, http.StatusOK, "agreement accepted", agreement)
}

func (h *PaymentHandler) GetInvestorAgreement(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	agreement, err := h.paymentUC.GetInvestorAgreement(c.Request().Context(), userID)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", agreement)
}

// paymentErrorResponse maps business errors onto HTTP statuses. Anything it
// does not recognize is treated as a validation failure so the message
// reaches the form.
func paymentErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, payment.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, payment.ErrAgreementExists):
		return utils.ErrorResponseHandler(c, http.StatusConflict, err.Error())
	case errors.Is(err, usecase.ErrStatusRegression):
		return utils.ErrorResponseHandler(c, http.StatusConflict, err.Error())
	default:
		return utils.BadRequestResponse(c, err.Error())
	}
}
