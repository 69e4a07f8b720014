package main

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

const flashCookie = "ration_flash"

// flash is a one-shot message shown on the next rendered page.
type flash struct {
	Category string // success, danger or info
	Message  string
}

func setFlash(c *gin.Context, category, message string) {
	v := url.QueryEscape(category + "|" + message)
	http.SetCookie(c.Writer, &http.Cookie{Name: flashCookie, Value: v, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// popFlash returns the pending flash, if any, and clears it.
func popFlash(c *gin.Context) *flash {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return nil
	}
	http.SetCookie(c.Writer, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	cat, msg, ok := strings.Cut(raw, "|")
	if !ok {
		return nil
	}
	return &flash{Category: cat, Message: msg}
}
