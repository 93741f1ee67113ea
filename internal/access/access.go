// Package access holds the pure authorization predicates for the platform.
// Everything here is stateless and side-effect free: a predicate over a
// (principal, resource) pair is safe to call repeatedly and in any order.
package access

import "inkwell/internal/models"

// Principal is the authenticated user context for one request, or the
// anonymous principal when no credentials were presented.
type Principal struct {
	ID          uint
	Role        models.Role
	Staff       bool
	Superuser   bool
	Active      bool
	IsAnonymous bool
}

// Anonymous returns the principal used for unauthenticated requests.
func Anonymous() Principal {
	return Principal{IsAnonymous: true}
}

// PrincipalFor derives the request principal from a stored user record.
func PrincipalFor(u *models.User) Principal {
	if u == nil {
		return Anonymous()
	}
	return Principal{
		ID:        u.ID,
		Role:      u.Role,
		Staff:     u.IsStaff,
		Superuser: u.IsSuperuser,
		Active:    u.IsActive,
	}
}

// Capabilities is the computed capability set for a principal. It collapses
// the role and the legacy staff/superuser flags into the two capabilities the
// rest of the code cares about, so flag checks do not leak into handlers.
type Capabilities struct {
	Author bool
	Admin  bool
}

// Resolve computes the capability set for p. Derived once per request by the
// auth middleware and carried alongside the principal.
func Resolve(p Principal) Capabilities {
	admin := IsAdmin(p)
	return Capabilities{
		Admin:  admin,
		Author: admin || (!p.IsAnonymous && p.Role == models.RoleAuthor),
	}
}

// IsAdmin reports whether p has admin capability: role=admin, or either
// legacy escalation flag.
func IsAdmin(p Principal) bool {
	if p.IsAnonymous {
		return false
	}
	return p.Role == models.RoleAdmin || p.Staff || p.Superuser
}

// CanAuthor reports whether p may create posts.
func CanAuthor(p Principal) bool {
	if p.IsAnonymous {
		return false
	}
	return p.Role == models.RoleAuthor || p.Role == models.RoleAdmin || IsAdmin(p)
}

// CanEditPost reports whether p may update or delete the post.
func CanEditPost(p Principal, post *models.Post) bool {
	if post == nil {
		return false
	}
	return IsAdmin(p) || (!p.IsAnonymous && p.ID == post.UserID)
}

// CanModifyComment reports whether p may update or delete the comment.
func CanModifyComment(p Principal, comment *models.Comment) bool {
	if comment == nil {
		return false
	}
	return IsAdmin(p) || (!p.IsAnonymous && p.ID == comment.UserID)
}

// CanViewPost is the visibility rule: published posts are visible to
// everyone, drafts only to the owning author and admins. Callers that find
// this false must report NotFound, never Forbidden, so a draft's existence
// is not confirmed to unprivileged viewers.
func CanViewPost(p Principal, post *models.Post) bool {
	if post == nil {
		return false
	}
	if post.Status == models.PostStatusPublished {
		return true
	}
	return IsAdmin(p) || (!p.IsAnonymous && p.ID == post.UserID)
}
