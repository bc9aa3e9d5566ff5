package http

import (
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	installStateCookieName = "shopify_install_state"
	installStateMaxAge     = 300
)

type installStateCookie struct {
	State string `json:"state"`
	Shop  string `json:"shop"`
}

func setInstallStateCookie(c *gin.Context, state, shop string) {
	payload := installStateCookie{State: state, Shop: shop}
	data, _ := json.Marshal(payload)
	encoded := base64.RawURLEncoding.EncodeToString(data)
	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(installStateCookieName, encoded, installStateMaxAge, "/", "", secure, true)
}

func clearInstallStateCookie(c *gin.Context) {
	secure := c.Request.TLS != nil
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(installStateCookieName, "", -1, "/", "", secure, true)
}

func readInstallStateCookie(c *gin.Context) (installStateCookie, bool) {
	value, err := c.Cookie(installStateCookieName)
	if err != nil || value == "" {
		return installStateCookie{}, false
	}
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return installStateCookie{}, false
	}
	var payload installStateCookie
	if err := json.Unmarshal(data, &payload); err != nil {
		return installStateCookie{}, false
	}
	if payload.State == "" || payload.Shop == "" {
		return installStateCookie{}, false
	}
	return payload, true
}

// matches compares the callback parameters with the cookie issued at install.
func (s installStateCookie) matches(state, shop string) bool {
	return subtle.ConstantTimeCompare([]byte(s.State), []byte(state)) == 1 && s.Shop == shop
}
