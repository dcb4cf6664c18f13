// Package httpapi exposes signup, login and the current-account endpoint
// over HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	detailUsernameTaken      = "Username already registered"
	detailBadCredentials     = "Incorrect username or password"
	detailInvalidCredentials = "Could not validate credentials"
	detailInternal           = "internal error"
	detailBadRequest         = "invalid request body"
)

// AuthService is what the handlers need for signup and login.
type AuthService interface {
	Signup(ctx context.Context, username, password, email string) (*models.PublicAccount, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// SessionResolver maps a bearer token to its account.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.PublicAccount, error)
}

// SignupRequest is accepted as JSON or as a form.
type SignupRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Email    string `json:"email" form:"email"`
}

// TokenRequest follows the OAuth2 password grant field names.
type TokenRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

type Handler struct {
	auth AuthService
	log  logging.Logger
}

func NewHandler(auth AuthService, log logging.Logger) *Handler {
	return &Handler{auth: auth, log: log}
}

func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: detailBadRequest})
		return
	}

	account, err := h.auth.Signup(c.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			c.JSON(http.StatusBadRequest, errorResponse{Detail: detailUsernameTaken})
		case errors.Is(err, common.ErrorValidation):
			c.JSON(http.StatusBadRequest, errorResponse{Detail: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
		}
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *Handler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: detailBadRequest})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			unauthorized(c, detailBadCredentials)
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse{Detail: detailInternal})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: common.TokenType})
}

// Me returns the account stored in the context by Authenticate.
func (h *Handler) Me(c *gin.Context) {
	account, ok := AccountFromContext(c)
	if !ok {
		unauthorized(c, detailInvalidCredentials)
		return
	}
	c.JSON(http.StatusOK, account)
}

func unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", common.BearerScheme)
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Detail: detail})
}
