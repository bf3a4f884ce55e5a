// Package authz is the boundary to the authorization collaborator. The core
// asks whether an identity may operate flights or administer dataset
// configuration and never second-guesses the answer.
package authz

import "strings"

// Authorizer answers permission checks for an actor identity (an
// email-like string).
type Authorizer interface {
	// CanOperate reports whether the actor may mark flights operated and
	// trigger auto-assignment runs.
	CanOperate(actor string) bool

	// CanAdminister reports whether the actor may change dataset
	// configuration (targets, work date, imports).
	CanAdminister(actor string) bool
}

// AllowList is a static Authorizer backed by two identity lists.
// Administrators implicitly hold operator rights. Matching is
// case-insensitive on the whole identity.
type AllowList struct {
	operators map[string]bool
	admins    map[string]bool
}

// NewAllowList builds an AllowList from operator and administrator
// identities.
func NewAllowList(operators, admins []string) *AllowList {
	list := &AllowList{
		operators: make(map[string]bool, len(operators)),
		admins:    make(map[string]bool, len(admins)),
	}
	for _, id := range operators {
		list.operators[normalize(id)] = true
	}
	for _, id := range admins {
		list.admins[normalize(id)] = true
	}
	return list
}

func (l *AllowList) CanOperate(actor string) bool {
	id := normalize(actor)
	return l.operators[id] || l.admins[id]
}

func (l *AllowList) CanAdminister(actor string) bool {
	return l.admins[normalize(actor)]
}

func normalize(actor string) string {
	return strings.ToLower(strings.TrimSpace(actor))
}
