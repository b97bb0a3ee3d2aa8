package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nvtienanh/metagate/internal/entities"
	"github.com/nvtienanh/metagate/internal/infrastructure/auth"
	"github.com/nvtienanh/metagate/internal/repositories"
)

const (
	requesterKey = "requester"

	// CheckoutTokenHeader carries the opaque session token that lets an
	// anonymous visitor act on the checkout created in that session.
	CheckoutTokenHeader = "X-Checkout-Token"
)

// RequesterMiddleware resolves the identity behind each request.
//
// A Bearer token is first verified as an account JWT; if that fails it is
// looked up as an app auth token. Requests without credentials proceed as
// anonymous, optionally carrying a checkout session token. Requests with
// credentials that verify against nothing are rejected.
func RequesterMiddleware(jwtService *auth.JWTService, permRepo repositories.PermissionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			requester := entities.Anonymous()
			requester.SessionToken = c.GetHeader(CheckoutTokenHeader)
			c.Set(requesterKey, requester)
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			respondError(c, ErrCodeUnauthorized, "malformed Authorization header")
			c.Abort()
			return
		}

		ctx := c.Request.Context()

		if claims, err := jwtService.ValidateToken(token); err == nil {
			account, err := permRepo.GetAccount(ctx, claims.AccountID)
			if err != nil {
				if errors.Is(err, repositories.ErrAccountNotFound) {
					respondError(c, ErrCodeUnauthorized, "unknown account")
				} else {
					respondServiceError(c, err)
				}
				c.Abort()
				return
			}
			if !account.IsActive {
				respondError(c, ErrCodeUnauthorized, "account is deactivated")
				c.Abort()
				return
			}

			permissions, err := permRepo.PermissionsForAccount(ctx, account.ID)
			if err != nil {
				respondServiceError(c, err)
				c.Abort()
				return
			}

			c.Set(requesterKey, &entities.Requester{
				Kind:        account.RequesterKind(),
				ID:          account.ID,
				Permissions: permissions,
			})
			c.Next()
			return
		} else if errors.Is(err, auth.ErrExpiredToken) {
			respondError(c, ErrCodeUnauthorized, "token has expired")
			c.Abort()
			return
		}

		// Not an account JWT; try it as an app auth token
		app, err := permRepo.GetAppByToken(ctx, token)
		if err != nil {
			if errors.Is(err, repositories.ErrAppNotFound) {
				respondError(c, ErrCodeUnauthorized, "invalid credentials")
			} else {
				respondServiceError(c, err)
			}
			c.Abort()
			return
		}

		permissions, err := permRepo.PermissionsForApp(ctx, app.ID)
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}

		c.Set(requesterKey, &entities.Requester{
			Kind:        entities.RequesterApp,
			ID:          app.ID,
			Permissions: permissions,
		})
		c.Next()
	}
}

// GetRequester retrieves the resolved requester from gin context.
// Falls back to anonymous when the middleware did not run.
func GetRequester(c *gin.Context) *entities.Requester {
	if v, exists := c.Get(requesterKey); exists {
		if r, ok := v.(*entities.Requester); ok {
			return r
		}
	}
	return entities.Anonymous()
}
