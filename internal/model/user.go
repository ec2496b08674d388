package model

// User stores the profile of a chat member whose messages are counted.
// Name fields are overwritten on every counted message (last write wins).
type User struct {
	UserID    int64  `gorm:"column:user_id;primaryKey"`
	Username  string `gorm:"column:username"`
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
}

func (User) TableName() string {
	return "users"
}
