package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/brickvest/brickvest/internal/pkg/middleware"
	"github.com/brickvest/brickvest/internal/utils"
	"github.com/brickvest/brickvest/services/payment"
	"github.com/brickvest/brickvest/services/property"
	"github.com/brickvest/brickvest/services/property/usecase"
)

// PropertyHandler exposes the listing catalogue and the checkout flow over
// HTTP.
type PropertyHandler struct {
	propertyUC property.PropertyUC
}

// NewPropertyHandler creates the property HTTP handler.
func NewPropertyHandler(propertyUC property.PropertyUC) *PropertyHandler {
	return &PropertyHandler{propertyUC: propertyUC}
}

// RegisterPublicRoutes mounts the routes that need no authentication.
func (h *PropertyHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/properties", h.GetProperties)
	g.GET("/properties/nearby", h.GetNearbyProperties)
	g.GET("/properties/:id", h.GetPropertyByID)
}

// RegisterRoutes mounts the routes that act on behalf of a signed-in user.
func (h *PropertyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/properties/invested", h.GetInvestedProperties)
	g.POST("/properties/:id/invest", h.Invest)
}

func (h *PropertyHandler) GetProperties(c echo.Context) error {
	properties, err := h.propertyUC.GetProperties(c.Request().Context())
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", properties)
}

func (h *PropertyHandler) GetPropertyByID(c echo.Context) error {
	p, err := h.propertyUC.GetPropertyByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			return utils.NotFoundResponse(c, err.Error())
		}
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", p)
}

func (h *PropertyHandler) GetNearbyProperties(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "lat must be a number")
	}
	lng, err := strconv.ParseFloat(c.QueryParam("lng"), 64)
	if err != nil {
		return utils.BadRequestResponse(c, "lng must be a number")
	}

	properties, err := h.propertyUC.GetNearbyProperties(c.Request().Context(), lat, lng)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", properties)
}

func (h *PropertyHandler) GetInvestedProperties(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	properties, err := h.propertyUC.GetInvestedProperties(c.Request().Context(), userID)
	if err != nil {
		return utils.InternalServerErrorResponse(c, "")
	}
	return utils.SuccessResponse(c, http.StatusOK, "", properties)
}

func (h *PropertyHandler) Invest(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	var req property.InvestRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}
	req.PropertyID = c.Param("id")

	txn, err := h.propertyUC.Invest(c.Request().Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, property.ErrNotFound):
			return utils.NotFoundResponse(c, err.Error())
		case errors.Is(err, payment.ErrNotFound):
			return utils.NotFoundResponse(c, err.Error())
		case errors.Is(err, usecase.ErrBelowMinimum),
			errors.Is(err, usecase.ErrPaymentMethodRequired):
			return utils.BadRequestResponse(c, err.Error())
		default:
			return utils.InternalServerErrorResponse(c, "")
		}
	}
	return utils.SuccessResponse(c, http.StatusCreated, "investment recorded", txn)
}
