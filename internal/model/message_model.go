package model

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatId    string    `gorm:"type:varchar(64);not null;index:idx_messages_chat_order,priority:1"`
	Role      string    `gorm:"type:varchar(20);not null"`
	Content   string    `gorm:"type:text;not null"`
	Sequence  int64     `gorm:"not null;index:idx_messages_chat_order,priority:3"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_chat_order,priority:2"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Message) TableName() string {
	return "messages"
}

var (
	sequenceMu   sync.Mutex
	lastSequence int64
)

// nextSequence is strictly increasing within the process and tracks wall
// clock nanoseconds, so rows sharing a created_at keep insertion order.
func nextSequence() int64 {
	sequenceMu.Lock()
	defer sequenceMu.Unlock()
	now := time.Now().UnixNano()
	if now <= lastSequence {
		now = lastSequence + 1
	}
	lastSequence = now
	return now
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}
	if m.Sequence == 0 {
		m.Sequence = nextSequence()
	}
	return nil
}
