package domain

import "time"

const (
	AccountStatusActive   = "active"
	AccountStatusDisabled = "disabled"
)

// Account is an MT5 trading account record stored in the mt5_accounts document.
type Account struct {
	ID        string    `json:"id"`
	Login     int64     `json:"login"`
	Server    string    `json:"server"`
	Name      string    `json:"name"`
	Group     string    `json:"group,omitempty"`
	Leverage  int       `json:"leverage"`
	Currency  string    `json:"currency"`
	Balance   float64   `json:"balance"`
	Status    string    `json:"status"`
	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Account) Touch() {
	if a == nil {
		return
	}
	a.UpdatedAt = time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = a.UpdatedAt
	}
}

func (a *Account) IsActive() bool {
	return a != nil && a.Status == AccountStatusActive
}
