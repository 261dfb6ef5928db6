package entity

import "time"

type Chat struct {
	ChatId    string    `json:"chatId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
