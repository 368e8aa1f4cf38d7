package http

import (
	"net/http"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// IdentityProvider resolves the verified principal behind a request.
// The relay performs no verification of its own.
type IdentityProvider interface {
	Identify(c *gin.Context) (domain.Identity, error)
	UpdateProfile(c *gin.Context, displayName, avatarRef string) (domain.Identity, error)
}

const (
	sessionDisplayName = "display_name"
	sessionAvatarRef   = "avatar_ref"
)

// CookieIdentityProvider uses the client token cookie as identity id and keeps the
// profile in the signed session cookie. Needs ClientTokenMiddleware and sessions.Sessions.
type CookieIdentityProvider struct{}

func (CookieIdentityProvider) Identify(c *gin.Context) (domain.Identity, error) {
	s := sessions.Default(c)
	name, _ := s.Get(sessionDisplayName).(string)
	avatar, _ := s.Get(sessionAvatarRef).(string)
	return newIdentity(c, name, avatar)
}

func (CookieIdentityProvider) UpdateProfile(c *gin.Context, displayName, avatarRef string) (domain.Identity, error) {
	identity, err := newIdentity(c, displayName, avatarRef)
	if err != nil {
		return domain.Identity{}, err
	}
	s := sessions.Default(c)
	s.Set(sessionDisplayName, identity.DisplayName)
	s.Set(sessionAvatarRef, identity.AvatarRef)
	if err := s.Save(); err != nil {
		return domain.Identity{}, err
	}
	return identity, nil
}

func newIdentity(c *gin.Context, displayName, avatarRef string) (domain.Identity, error) {
	identity, err := domain.NewIdentity(domain.IdentityID(c.GetString(clientTokenKey)), displayName, avatarRef)
	if err != nil {
		return domain.Identity{}, core.Errorf(core.KindInvalidArgument, "%v", err)
	}
	return identity, nil
}

type identityHandlers struct {
	identities IdentityProvider
}

type updateIdentityRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
	AvatarRef   string `json:"avatar_ref"`
}

// GET /api/identity
func (h *identityHandlers) get(c *gin.Context) {
	identity, err := h.identities.Identify(c)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}

// PUT /api/identity; live connections keep the identity they were bound with.
func (h *identityHandlers) update(c *gin.Context) {
	var req updateIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.Errorf(core.KindInvalidArgument, "missing or invalid display_name"))
		return
	}
	identity, err := h.identities.UpdateProfile(c, req.DisplayName, req.AvatarRef)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, identity)
}
