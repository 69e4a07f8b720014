package main

import (
	"net/http"
	"time"

	"rationdist/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const principalKey = "principal"

// loadSession reads the session cookie and stores the principal on the
// context. An invalid or expired cookie is dropped.
func (s *server) loadSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.cfg.Session.CookieName)
		if err == nil && token != "" {
			p, perr := auth.ParseToken(s.secret, token)
			if perr != nil {
				s.clearSession(c)
			} else {
				c.Set(principalKey, p)
			}
		}
		c.Next()
	}
}

// requireDistributor sends visitors without a session back to the login
// form.
func (s *server) requireDistributor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principalFrom(c) == nil {
			setFlash(c, "danger", "Please log in first.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

func principalFrom(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

func (s *server) startSession(c *gin.Context, p *auth.Principal) error {
	token, err := auth.IssueToken(s.secret, s.cfg.Session.TTL, p)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.Session.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.Session.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *server) clearSession(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.Session.SecureCookie,
	})
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if p := principalFrom(c); p != nil {
			fields = append(fields, zap.String("distributor", p.Username))
		}
		logger.Info("request completed", fields...)
	}
}
