package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/lo"
)

// Claim names issued by the identity provider
const (
	ClaimUsername         = "custom:feideId"
	ClaimCustomerID       = "custom:customerId"
	ClaimApplicationRoles = "custom:applicationRoles"
	ClaimAccessRights     = "custom:accessRights"
)

// Well-known roles and access rights
const (
	RoleCreator                  = "creator"
	RoleCurator                  = "curator"
	AccessRightApproveDoiRequest = "APPROVE_DOI_REQUEST"
)

// ErrNoUser is returned when a request carries no authenticated user
var ErrNoUser = errors.New("user not found in context")

// User is the authenticated caller, built once at the HTTP boundary
type User struct {
	Username     string
	PublisherID  string
	Roles        []string
	AccessRights []string
}

// UserFromClaims builds a user from flat string claims. List claims are
// comma separated.
func UserFromClaims(claims map[string]string) *User {
	return &User{
		Username:     strings.TrimSpace(claims[ClaimUsername]),
		PublisherID:  strings.TrimSpace(claims[ClaimCustomerID]),
		Roles:        splitClaim(claims[ClaimApplicationRoles]),
		AccessRights: splitClaim(claims[ClaimAccessRights]),
	}
}

// IsAuthenticated reports whether the user has an identity
func (u *User) IsAuthenticated() bool {
	return u != nil && u.Username != ""
}

// HasRole checks a role case-insensitively
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	return lo.ContainsBy(u.Roles, func(r string) bool {
		return strings.EqualFold(r, role)
	})
}

// HasAccessRight checks an access right case-insensitively
func (u *User) HasAccessRight(right string) bool {
	if u == nil {
		return false
	}
	return lo.ContainsBy(u.AccessRights, func(a string) bool {
		return strings.EqualFold(a, right)
	})
}

// IsCurator reports whether the user may act as a curator of its publisher
func (u *User) IsCurator() bool {
	return u.HasRole(RoleCurator) || u.HasAccessRight(AccessRightApproveDoiRequest)
}

func splitClaim(value string) []string {
	parts := lo.Map(strings.Split(value, ","), func(part string, _ int) string {
		return strings.TrimSpace(part)
	})
	return lo.Compact(parts)
}

type contextKey string

// UserContextKey is the context key of the authenticated user
const UserContextKey contextKey = "user"

// GetUserFromContext extracts user from context
func GetUserFromContext(ctx context.Context) (*User, error) {
	user, ok := ctx.Value(UserContextKey).(*User)
	if !ok || user == nil {
		return nil, ErrNoUser
	}
	return user, nil
}

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, UserContextKey, user)
}
