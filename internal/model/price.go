package model

import "time"

// Price is one append-only price record for a security. Valuation looks
// prices up by "latest price on or before date".
type Price struct {
	ID         string    `json:"id"`
	SecurityID string    `json:"securityId"`
	Date       time.Time `json:"date"`
	Price      float64   `json:"price"`
}
