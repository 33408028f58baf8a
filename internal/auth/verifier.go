// AngelaMos | 2026
// verifier.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/carterperez-dev/templates/callboard/internal/core"
	"github.com/carterperez-dev/templates/callboard/internal/middleware"
)

// Verifier is the middleware.TokenVerifier used by the router. On top of the
// signature check it rejects blacklisted tokens, tokens minted before the
// user's last logout-all, and tokens whose user has been deleted. The role in
// the returned claims is the user's current role, so a demotion takes effect
// on the next request.
type Verifier struct {
	jwt       *JWTManager
	blacklist Blacklist
	users     UserProvider
}

func NewVerifier(jwt *JWTManager, blacklist Blacklist, users UserProvider) *Verifier {
	return &Verifier{jwt: jwt, blacklist: blacklist, users: users}
}

func (v *Verifier) VerifyAccessToken(
	ctx context.Context,
	token string,
) (*middleware.AccessTokenClaims, error) {
	claims, err := v.jwt.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, err
	}

	revoked, err := v.blacklist.IsRevoked(ctx, claims.JTI)
	if err != nil {
		return nil, core.NewAppError(
			err,
			"authentication backend unavailable",
			http.StatusServiceUnavailable,
			"SERVICE_UNAVAILABLE",
		)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := v.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: user gone: %w", core.ErrTokenRevoked)
		}
		return nil, core.InternalError(fmt.Errorf("verify token: %w", err))
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: stale version: %w", core.ErrTokenRevoked)
	}

	claims.Role = user.Role
	return claims, nil
}
