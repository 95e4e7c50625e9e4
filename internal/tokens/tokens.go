package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hrlmwn/feedgram/internal/models"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 5 * 24 * time.Hour
	DefaultLinkTTL    = 30 * time.Minute
)

// SessionClaims is the payload of both access and refresh tokens. The token
// classes share a shape but are signed with different secrets. JwtVersion is
// the account epoch the token was minted under; comparing it against the
// live account record is the caller's job, not the verifier's.
type SessionClaims struct {
	UserID     string `json:"userId"`
	JwtVersion string `json:"jwtVersion"`
	jwt.RegisteredClaims
}

// LinkClaims is the payload of a password-reset link token. It is bound to an
// email address, not an account epoch, so it survives a version bump.
type LinkClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Service struct {
	AccessSecret  []byte
	RefreshSecret []byte
	LinkSecret    []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	LinkTTL    time.Duration
}

func NewService(accessSecret, refreshSecret, linkSecret []byte) *Service {
	return &Service{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		LinkSecret:    linkSecret,
		AccessTTL:     DefaultAccessTTL,
		RefreshTTL:    DefaultRefreshTTL,
		LinkTTL:       DefaultLinkTTL,
	}
}

func (s *Service) SignAccess(user *models.User) (string, error) {
	return signSession(user, s.AccessSecret, s.AccessTTL)
}

func (s *Service) SignRefresh(user *models.User) (string, error) {
	return signSession(user, s.RefreshSecret, s.RefreshTTL)
}

func (s *Service) SignLink(email string) (string, error) {
	claims := LinkClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.LinkTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.LinkSecret)
}

func (s *Service) VerifyAccess(tokenStr string) (*SessionClaims, error) {
	return verifySession(tokenStr, s.AccessSecret)
}

func (s *Service) VerifyRefresh(tokenStr string) (*SessionClaims, error) {
	return verifySession(tokenStr, s.RefreshSecret)
}

func (s *Service) VerifyLink(tokenStr string) (*LinkClaims, error) {
	var claims LinkClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return s.LinkSecret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, err
	}
	if claims.Email == "" {
		return nil, errors.New("token missing email")
	}
	return &claims, nil
}

func signSession(user *models.User, secret []byte, ttl time.Duration) (string, error) {
	claims := SessionClaims{
		UserID:     user.ID,
		JwtVersion: user.JwtVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func verifySession(tokenStr string, secret []byte) (*SessionClaims, error) {
	var claims SessionClaims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, errors.New("token missing user id")
	}
	return &claims, nil
}
