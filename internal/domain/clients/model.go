package clients

import "time"

type Client struct {
	ID int64 `json:"id"`
	// ExternalID идентификатор в чате (Telegram chat id строкой).
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	CreatedAt  time.Time `json:"createdAt"`
}
