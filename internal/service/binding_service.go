package service

import (
	"errors"
	"log"

	"group-stats-bot/internal/binding"
)

var (
	// ErrNotBound is returned when no group has been bound yet.
	ErrNotBound = errors.New("bot is not bound to a group")
	// ErrNotAuthorized is returned when a non-administrator tries to bind.
	ErrNotAuthorized = errors.New("caller is not a group administrator")
)

// BindingService gates admin binding behind group membership rules.
type BindingService struct {
	store *binding.Store
}

func NewBindingService(store *binding.Store) *BindingService {
	return &BindingService{store: store}
}

// BindAdmin records userID as the report recipient. The group must already
// be bound and the caller must hold the administrator or creator role in it
// at the time of binding; otherwise the stored admin is left unchanged.
func (s *BindingService) BindAdmin(userID int64, role string) error {
	groupID, ok := s.store.GroupID()
	if !ok {
		return ErrNotBound
	}
	if role != "administrator" && role != "creator" {
		return ErrNotAuthorized
	}
	if err := s.store.SetAdminID(userID); err != nil {
		return err
	}
	log.Printf("[info] bot bound to group %d by admin %d", groupID, userID)
	return nil
}
