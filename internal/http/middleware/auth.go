package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const (
	SessionName   = "nexusboard_session"
	ContextUserID = "user_id"
	sessionUserID = "user_id"
)

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	Parse(token string) (int64, error)
}

// Auth identifies the caller from the session cookie, falling back to a
// bearer token from the Authorization header or the "token" query parameter.
type Auth struct {
	store  sessions.Store
	tokens TokenParser
}

func NewAuth(store sessions.Store, tokens TokenParser) *Auth {
	return &Auth{store: store, tokens: tokens}
}

func NewCookieStore(secret string, secure bool, maxAgeSeconds int) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// Login starts a session for userID.
func (a *Auth) Login(c *gin.Context, userID int64) error {
	sess, _ := a.store.Get(c.Request, SessionName)
	sess.Values[sessionUserID] = userID
	return sess.Save(c.Request, c.Writer)
}

func (a *Auth) Logout(c *gin.Context) error {
	sess, _ := a.store.Get(c.Request, SessionName)
	delete(sess.Values, sessionUserID)
	sess.Options.MaxAge = -1
	return sess.Save(c.Request, c.Writer)
}

func (a *Auth) identify(c *gin.Context) (int64, bool) {
	if sess, err := a.store.Get(c.Request, SessionName); err == nil {
		if id, ok := sess.Values[sessionUserID].(int64); ok && id > 0 {
			return id, true
		}
	}

	token := c.Query("token")
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	if token == "" {
		return 0, false
	}
	id, err := a.tokens.Parse(token)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Identify sets user_id when the caller is known and never aborts.
func (a *Auth) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id, ok := a.identify(c); ok {
			c.Set(ContextUserID, id)
		}
		c.Next()
	}
}

// Require aborts with status when the caller is not authenticated.
func (a *Auth) Require(status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := a.identify(c)
		if !ok {
			c.AbortWithStatusJSON(status, gin.H{"error": "authentication required", "redirect": "/login"})
			return
		}
		c.Set(ContextUserID, id)
		c.Next()
	}
}
