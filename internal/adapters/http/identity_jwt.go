package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

// accessTokenQuery carries the token on websocket upgrades, browsers cannot set headers there.
const accessTokenQuery = "access_token"

// IdentityClaims is what the external issuer puts into a relay token.
type IdentityClaims struct {
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	jwt.RegisteredClaims
}

// JWTIdentityProvider trusts HS256 tokens signed by an external issuer.
// The subject becomes the identity id; the profile lives in the token.
type JWTIdentityProvider struct {
	Secret []byte
	Issuer string
}

func (p JWTIdentityProvider) Identify(c *gin.Context) (domain.Identity, error) {
	raw := bearerToken(c)
	if raw == "" {
		return domain.Identity{}, core.Errorf(core.KindUnauthenticated, "missing token")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if p.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.Issuer))
	}
	var claims IdentityClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return p.Secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		detail := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			detail = "token has expired"
		}
		log.Debug().Err(err).Str("module", "adapters.http").Msg("token rejected")
		return domain.Identity{}, core.Errorf(core.KindUnauthenticated, "%s", detail)
	}

	identity, err := domain.NewIdentity(domain.IdentityID(claims.Subject), claims.Name, claims.Avatar)
	if err != nil {
		return domain.Identity{}, core.Errorf(core.KindUnauthenticated, "token subject: %v", err)
	}
	return identity, nil
}

func (JWTIdentityProvider) UpdateProfile(*gin.Context, string, string) (domain.Identity, error) {
	return domain.Identity{}, core.Errorf(core.KindInvalidArgument, "profile is managed by the token issuer")
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Query(accessTokenQuery)
}

// NewIdentityProvider picks the provider named by cfg.Identity.
func NewIdentityProvider(cfg *config.Config) (IdentityProvider, error) {
	switch cfg.Identity {
	case "", "cookie":
		return CookieIdentityProvider{}, nil
	case "jwt":
		if cfg.JWTSecret == "" {
			return nil, errors.New("identity jwt needs jwt_secret")
		}
		return JWTIdentityProvider{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer}, nil
	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.Identity)
	}
}
