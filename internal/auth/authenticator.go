package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// Principal represents the authenticated caller for the duration of one
// request. When Fresh is set the role was confirmed against the identity
// store rather than taken from the token claim.
type Principal struct {
	SubjectID string
	Role      domain.Role
	Fresh     bool
}

// Policy controls how much trust an operation places in the token.
// Privileged operations set FreshIdentity so a stale or forged role claim
// cannot grant access the identity store no longer confirms.
type Policy struct {
	FreshIdentity bool
}

// Authenticator turns an opaque session token into a Principal.
type Authenticator struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthenticator constructs the authenticator.
func NewAuthenticator(tokens *TokenManager, users repository.UserRepository) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// Authenticate verifies rawToken and returns the caller's Principal.
// Failures map to the Unauthorized taxonomy; no partial principal is ever
// returned alongside an error.
func (a *Authenticator) Authenticate(ctx context.Context, rawToken string, policy Policy) (*Principal, error) {
	if rawToken == "" {
		return nil, apperrors.NewUnauthorized("missing session token")
	}

	claims, err := a.tokens.ParseToken(rawToken)
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}

	principal := &Principal{SubjectID: claims.SubjectID, Role: claims.Role}
	if !policy.FreshIdentity {
		return principal, nil
	}

	user, err := a.users.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.MapError(err)
	}

	principal.Role = user.Role
	principal.Fresh = true
	return principal, nil
}
