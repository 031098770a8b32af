package model

import (
	"time"
)

// FeedItem is one spending entry of the social feed.
type FeedItem struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userID"`
	Email      string    `json:"email"`
	Restaurant string    `json:"restaurant"`
	Amount     float64   `json:"amount"`
	CreatedAt  time.Time `json:"created_at"`
	Likes      int       `json:"likes"`
	Comments   int       `json:"comments"`
	IsLiked    bool      `json:"is_liked"`
}

// FeedResponse represents response for GET /feed
type FeedResponse struct {
	Items []FeedItem `json:"items"`
	// Cached is true when the backend was unreachable and items come from the live cache.
	Cached bool `json:"cached,omitempty"`
}

// PostRequest represents request for POST /feed
type PostRequest struct {
	UserID     string  `json:"userID" validate:"required"`
	Restaurant string  `json:"restaurant" validate:"required,max=200"`
	Amount     float64 `json:"amount" validate:"gt=0"`
}

// Validate validates PostRequest fields.
func (r *PostRequest) Validate() error {
	return validateStruct(r)
}

// SummaryResponse represents response for GET /feed/summary
type SummaryResponse struct {
	UserID     string  `json:"userID"`
	TotalSpent float64 `json:"totalSpent"`
	Budget     float64 `json:"budget"`
	Remaining  float64 `json:"remaining"`
}

// BudgetRequest represents request for PUT /feed/budget
type BudgetRequest struct {
	UserID string  `json:"userID" validate:"required"`
	Budget float64 `json:"budget" validate:"gte=0"`
}

// Validate validates BudgetRequest fields.
func (r *BudgetRequest) Validate() error {
	return validateStruct(r)
}

// Friend is an accepted friend of a user.
type Friend struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// FriendsResponse represents response for GET /feed/friends
type FriendsResponse struct {
	UserID   string   `json:"userID"`
	Friends  []Friend `json:"friends"`
	Requests []string `json:"requests"`
}

// FriendRequest represents request for POST /feed/friends
type FriendRequest struct {
	FromEmail string `json:"fromEmail" validate:"required,email"`
	ToEmail   string `json:"toEmail" validate:"required,email,nefield=FromEmail"`
}

// Validate validates FriendRequest fields.
func (r *FriendRequest) Validate() error {
	return validateStruct(r)
}

// FriendAnswer represents request for POST /feed/friends/answer
type FriendAnswer struct {
	UserID         string `json:"userID" validate:"required"`
	RequesterEmail string `json:"requesterEmail" validate:"required,email"`
	Accept         bool   `json:"accept"`
}

// Validate validates FriendAnswer fields.
func (r *FriendAnswer) Validate() error {
	return validateStruct(r)
}
