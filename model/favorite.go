package models

import "time"

type FavoriteEntry struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
