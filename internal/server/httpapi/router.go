package httpapi

import (
	"github.com/dmitrijs2005/authkeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the endpoints. /users/me is also served with a trailing
// slash rather than redirected.
func NewRouter(auth AuthService, resolver SessionResolver, log logging.Logger) *gin.Engine {
	h := NewHandler(auth, log)

	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(RequestID(), AccessLog(log), gin.Recovery())

	r.POST("/signup", h.Signup)
	r.POST("/token", h.Token)

	me := r.Group("/users", Authenticate(resolver, log))
	me.GET("/me", h.Me)
	me.GET("/me/", h.Me)

	return r
}
