package request

// CreateTransactionRequest is the payload for creating a transaction.
// Amount, Price and Commission are optional; Date is "2006-01-02".
type CreateTransactionRequest struct {
	AccountID        string   `json:"accountId"`
	Date             string   `json:"date"`
	Type             string   `json:"type"`
	InvestmentAction string   `json:"investmentAction"`
	SecurityID       string   `json:"securityId"`
	Amount           *float64 `json:"amount"`
	Quantity         float64  `json:"quantity"`
	Price            *float64 `json:"price"`
	Commission       *float64 `json:"commission"`
}

// CreatePriceRequest is the payload for recording a price.
type CreatePriceRequest struct {
	SecurityID string  `json:"securityId"`
	Date       string  `json:"date"`
	Price      float64 `json:"price"`
}

// CreateAccountRequest is the payload for creating an account.
type CreateAccountRequest struct {
	Name        string `json:"name"`
	AccountType string `json:"accountType"`
}

// CreateSecurityRequest is the payload for creating a security.
type CreateSecurityRequest struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
