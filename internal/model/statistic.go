package model

// Statistic is one per-day, per-user, per-kind message tally.
// Date is an ISO 8601 calendar date in the bot's reference timezone.
type Statistic struct {
	Date        string      `gorm:"column:date;primaryKey"`
	UserID      int64       `gorm:"column:user_id;primaryKey"`
	MessageType MessageType `gorm:"column:message_type;primaryKey"`
	Count       int64       `gorm:"column:count"`
}

func (Statistic) TableName() string {
	return "statistics"
}
