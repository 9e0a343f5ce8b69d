// Package identity defines the acting user passed explicitly to every task action.
package identity

import (
	"fmt"
	"strings"
)

// Actor represents the authenticated user performing an action
type Actor struct {
	UserID   string   `json:"userId" yaml:"userId"`
	Username string   `json:"username,omitempty" yaml:"username,omitempty"`
	NickName string   `json:"nickName,omitempty" yaml:"nickName,omitempty"`
	RoleIDs  []string `json:"roleIds,omitempty" yaml:"roleIds,omitempty"`
	TenantID string   `json:"tenantId,omitempty" yaml:"tenantId,omitempty"`
}

// DisplayName returns the name used in audit messages
func (a *Actor) DisplayName() string {
	if a.Username != "" {
		return a.Username
	}
	if a.NickName != "" {
		return a.NickName
	}
	return a.UserID
}

// Validate checks the actor carries a user id
func (a *Actor) Validate() error {
	if a == nil || strings.TrimSpace(a.UserID) == "" {
		return fmt.Errorf("actor user id was empty")
	}
	return nil
}

// NewActor creates an actor
func NewActor(userID, username, tenantID string, roleIDs ...string) *Actor {
	return &Actor{UserID: userID, Username: username, TenantID: tenantID, RoleIDs: roleIDs}
}
