package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/hrlmwn/feedgram/internal/apperr"
	"github.com/hrlmwn/feedgram/internal/crypto"
	"github.com/hrlmwn/feedgram/internal/tokens"
)

// Guard protects routes that need a live access token. The cookie value is
// decrypted, then checked for signature and expiry. The jwt version is not
// compared here: only the protocol handlers read the live account record.
type Guard struct {
	Tokens     *tokens.Service
	Cipher     *crypto.Cipher
	CookieName string
}

func (g *Guard) RequireAccessToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(g.CookieName)
		if err != nil || cookie.Value == "" {
			return apperr.Unauthorized("missing access token")
		}

		rawToken, err := g.Cipher.Decrypt(cookie.Value)
		if err != nil {
			return apperr.Unauthorized("invalid access token")
		}
		claims, err := g.Tokens.VerifyAccess(rawToken)
		if err != nil {
			return apperr.Unauthorized("invalid access token")
		}

		c.Set("userID", claims.UserID)
		return next(c)
	}
}
