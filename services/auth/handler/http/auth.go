package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brickvest/brickvest/internal/pkg/middleware"
	"github.com/brickvest/brickvest/internal/utils"
	"github.com/brickvest/brickvest/services/auth"
)

// AuthHandler exposes sign-up, sign-in and session endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates the auth HTTP handler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterPublicRoutes mounts the unauthenticated auth routes.
func (h *AuthHandler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/signup", h.SignUp)
	g.POST("/auth/signin", h.SignIn)
	g.POST("/auth/google", h.SignInWithGoogle)
	g.POST("/auth/signout", h.SignOut)
}

// RegisterRoutes mounts the auth routes that need a valid token.
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/auth/me", h.Me)
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	resp, err := h.authService.SignUpWithEmail(c.Request().Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		return utils.BadRequestResponse(c, auth.ClassifyAuthError(err))
	}
	return utils.SuccessResponse(c, http.StatusCreated, "account created", resp)
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	resp, err := h.authService.SignInWithEmail(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return utils.UnauthorizedResponse(c, auth.ClassifyAuthError(err))
	}
	return utils.SuccessResponse(c, http.StatusOK, "signed in", resp)
}

type googleSignInRequest struct {
	IDToken string `json:"id_token"`
}

func (h *AuthHandler) SignInWithGoogle(c echo.Context) error {
	var req googleSignInRequest
	if err := c.Bind(&req); err != nil {
		return utils.BadRequestResponse(c, "invalid request body")
	}

	resp, err := h.authService.SignInWithGoogle(c.Request().Context(), req.IDToken)
	if err != nil {
		return utils.UnauthorizedResponse(c, auth.ClassifyAuthError(err))
	}
	return utils.SuccessResponse(c, http.StatusOK, "signed in", resp)
}

func (h *AuthHandler) SignOut(c echo.Context) error {
	h.authService.SignOut(c.Request().Context())
	return utils.SuccessResponse(c, http.StatusOK, "signed out", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.UserIDFromContext(c)

	user, err := h.authService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return utils.NotFoundResponse(c, auth.ClassifyAuthError(err))
	}
	return utils.SuccessResponse(c, http.StatusOK, "", user)
}
