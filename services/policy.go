package services

import (
	"strings"

	"github.com/cppla/blogapi/models"
)

// Policy decides which callers may mutate which resources. Checks run against
// the freshly fetched row, never against client-supplied ownership data.
type Policy struct {
	admins []string
}

// NewPolicy creates a Policy; admins are usernames allowed to manage categories.
func NewPolicy(admins []string) *Policy {
	return &Policy{admins: admins}
}

// IsAdmin reports whether user is listed as an administrator. Usernames are
// unique case-sensitively, so the match is exact.
func (p *Policy) IsAdmin(user *models.User) bool {
	if user == nil || user.Username == "" {
		return false
	}
	for _, u := range p.admins {
		if strings.TrimSpace(u) == user.Username {
			return true
		}
	}
	return false
}

// CanModify allows only the author to update or delete their content.
func (p *Policy) CanModify(user *models.User, authorID uint) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if user.ID != authorID {
		return ErrNotAuthor
	}
	return nil
}

// CanManageCategories allows only administrators to create or delete categories.
func (p *Policy) CanManageCategories(user *models.User) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if !p.IsAdmin(user) {
		return ErrNotAdmin
	}
	return nil
}
