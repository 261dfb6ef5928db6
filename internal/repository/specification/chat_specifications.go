package specification

import "gorm.io/gorm"

type ByChatID struct {
	ChatID string
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type ByRole struct {
	Role string
}

func (s ByRole) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("role = ?", s.Role)
}

// ThreadOrder sorts messages oldest first, ties broken by insertion order.
type ThreadOrder struct{}

func (s ThreadOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("sequence ASC")
}

// NewestChatsFirst sorts chats by creation time, newest first.
type NewestChatsFirst struct{}

func (s NewestChatsFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("chat_id ASC")
}

// LatestMessagesFirst is the reverse of ThreadOrder. Combine with Pagination
// to take the tail of a thread.
type LatestMessagesFirst struct{}

func (s LatestMessagesFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("sequence DESC")
}
