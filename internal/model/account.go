package model

import "time"

// Account represents one bank or brokerage account.
type Account struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	AccountType string    `json:"accountType"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Security represents one tradable instrument. Security ids are content
// hashes of the symbol (see SecurityID), so re-importing the same data
// yields the same ids.
type Security struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}
