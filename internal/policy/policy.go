// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy holds the pure authorization rules of the CMS: the role
// seniority order and the decision tables gating lifecycle transitions.
// Every authorization check in the stores goes through this package; no
// call site carries its own role comparison.
package policy

import "lumina/internal/models"

// Relation is the outcome of comparing two roles in the seniority order.
type Relation int

const (
	Equal Relation = iota
	Senior
	Junior
	Incomparable
)

// seniors maps each role to the set of roles strictly senior to it.
//
// admin outranks everyone. editor outranks author only: moderator sits
// outside the editorial chain, so moving someone into or out of the
// moderator role takes an admin. author and moderator are incomparable.
var seniors = map[models.Role]map[models.Role]bool{
	models.RoleAdmin:     {},
	models.RoleEditor:    {models.RoleAdmin: true},
	models.RoleAuthor:    {models.RoleAdmin: true, models.RoleEditor: true},
	models.RoleModerator: {models.RoleAdmin: true},
}

// Compare returns the seniority relation of a with respect to b.
// Unknown roles compare as Incomparable to everything.
func Compare(a, b models.Role) Relation {
	if a == b {
		return Equal
	}
	if seniors[b][a] {
		return Senior
	}
	if seniors[a][b] {
		return Junior
	}
	return Incomparable
}

// IsSenior reports whether a is strictly senior to b.
func IsSenior(a, b models.Role) bool {
	return Compare(a, b) == Senior
}

// CanChangeRole reports whether an actor with actorRole may move a target
// from currentRole to newRole. The actor must be strictly senior to both
// the target's current role and the role being granted.
func CanChangeRole(actorRole, currentRole, newRole models.Role) bool {
	return IsSenior(actorRole, currentRole) && IsSenior(actorRole, newRole)
}

// CanGrant reports whether an actor with actorRole may hand out the given
// role, e.g. on an invitation. Same seniority rule as role changes.
func CanGrant(actorRole, role models.Role) bool {
	return IsSenior(actorRole, role)
}

// ValidPostTransition reports whether from -> to is an edge of the post
// lifecycle machine, ignoring who is asking. Anything not listed here is
// an invalid transition for every actor.
func ValidPostTransition(from, to models.PostStatus) bool {
	switch {
	case from == models.PostStatusDraft && to == models.PostStatusPublished: // publish
		return true
	case from == models.PostStatusPublished && to == models.PostStatusDraft: // unpublish
		return true
	case from == models.PostStatusPublished && to == models.PostStatusArchived: // archive
		return true
	case from == models.PostStatusArchived && to == models.PostStatusDraft: // restore
		return true
	}
	return false
}

// CanTransitionPost is the single decision function for post lifecycle
// authorization, evaluated before any mutation. Admins and editors may take
// any valid edge; the post's author may only publish and unpublish their
// own post. Authors cannot archive or restore, not even their own posts.
func CanTransitionPost(actorRole models.Role, isOwner bool, from, to models.PostStatus) bool {
	if !ValidPostTransition(from, to) {
		return false
	}
	switch actorRole {
	case models.RoleAdmin, models.RoleEditor:
		return true
	}
	if !isOwner {
		return false
	}
	publish := from == models.PostStatusDraft && to == models.PostStatusPublished
	unpublish := from == models.PostStatusPublished && to == models.PostStatusDraft
	return publish || unpublish
}

// CanModerateComment reports whether the role may approve or reject
// comments. Authors cannot moderate, their own comments included.
func CanModerateComment(actorRole models.Role) bool {
	switch actorRole {
	case models.RoleAdmin, models.RoleEditor, models.RoleModerator:
		return true
	}
	return false
}
