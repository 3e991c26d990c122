package models

// PutPortfolioResponse is returned after a CSV upload is stored
type PutPortfolioResponse struct {
	ID       uint32    `json:"id"`
	NumLots  int       `json:"num_lots"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
