package model

import "time"

type Chat struct {
	ChatId    string    `gorm:"type:varchar(64);primaryKey"`
	Title     string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Chat) TableName() string {
	return "chats"
}

// All returns every table managed by the service, in migration order.
func All() []interface{} {
	return []interface{}{
		&Chat{},
		&Message{},
	}
}
