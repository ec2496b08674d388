package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"group-stats-bot/internal/model"
)

// StatsRepository handles the per-(date, user, kind) counters.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// DayRow is one counter joined with its owner's profile. Name fields are
// nil when the user has no profile row.
type DayRow struct {
	UserID      int64
	Username    *string
	FirstName   *string
	LastName    *string
	MessageType string
	Count       int64
}

// IncrementCounter adds 1 to the (date, user, kind) counter, creating it
// with count=1 when absent. The upsert is a single statement, so concurrent
// increments for the same key are never lost. A failed write is retried
// once; the second failure is returned to the caller.
func (r *StatsRepository) IncrementCounter(ctx context.Context, date string, userID int64, kind model.MessageType) error {
	err := r.increment(ctx, date, userID, kind)
	if err != nil {
		err = r.increment(ctx, date, userID, kind)
	}
	if err != nil {
		return fmt.Errorf("increment counter (%s, %d, %s): %w", date, userID, kind, err)
	}
	return nil
}

func (r *StatsRepository) increment(ctx context.Context, date string, userID int64, kind model.MessageType) error {
	row := model.Statistic{Date: date, UserID: userID, MessageType: kind, Count: 1}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "user_id"}, {Name: "message_type"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("count + 1")}),
	}).Create(&row).Error
}

// QueryDay returns every counter for one date joined with user profiles.
// Rows are ordered by user id, then message type, which fixes the report's
// iteration order.
func (r *StatsRepository) QueryDay(ctx context.Context, date string) ([]DayRow, error) {
	var rows []DayRow
	err := r.db.WithContext(ctx).
		Table("statistics").
		Select("statistics.user_id, users.username, users.first_name, users.last_name, statistics.message_type, statistics.count").
		Joins("LEFT JOIN users ON users.user_id = statistics.user_id").
		Where("statistics.date = ?", date).
		Order("statistics.user_id ASC, statistics.message_type ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query day %s: %w", date, err)
	}
	return rows, nil
}

// ResetAll deletes every counter row, regardless of date. Profiles stay.
func (r *StatsRepository) ResetAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("DELETE FROM statistics").Error; err != nil {
		return fmt.Errorf("reset statistics: %w", err)
	}
	return nil
}
