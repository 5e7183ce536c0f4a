package models

import "time"

// Portfolio represents a Prime portfolio
type Portfolio struct {
	Id   string
	Name string
}

// Wallet represents a Prime wallet
type Wallet struct {
	Id     string
	Name   string
	Symbol string
	Type   string
}

// PrimeDeposit is an inbound Prime wallet transaction an admin can match
// against a trade order's proof of payment
type PrimeDeposit struct {
	Id            string
	WalletId      string
	WalletName    string
	Symbol        string
	Amount        string
	Status        string
	TransactionId string
	CreatedAt     time.Time
}
