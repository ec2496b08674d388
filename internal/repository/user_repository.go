package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"group-stats-bot/internal/model"
)

// UserRepository handles profile rows in the users table.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Upsert inserts the profile or overwrites its name fields when the user
// already exists (last write wins). A failed write is retried once; the
// second failure is returned to the caller.
func (r *UserRepository) Upsert(ctx context.Context, user *model.User) error {
	err := r.upsert(ctx, user)
	if err != nil {
		err = r.upsert(ctx, user)
	}
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", user.UserID, err)
	}
	return nil
}

func (r *UserRepository) upsert(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_name"}),
	}).Create(user).Error
}

// FindByID returns a stored profile.
func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
