package models

import "time"

type Transaction struct {
	ID              int          `json:"id"`
	UserID          int          `json:"-"`
	Description     string       `json:"description"`
	Amount          *float64     `json:"amount"`
	Currency        string       `json:"currency"`
	Category        *Category    `json:"category"`
	CarbonFootprint *float64     `json:"carbonFootprint"`
	EmissionFactor  *float64     `json:"emissionFactor"`
	FactorSource    *string      `json:"factorSource"`
	ConfidenceScore *float64     `json:"confidenceScore"`
	Merchant        *string      `json:"merchant"`
	PaymentType     *PaymentType `json:"paymentType"`
	CreatedAt       time.Time    `json:"createdAt"`
}

// Footprint returns the stored footprint, treating an unset value as zero.
func (t Transaction) Footprint() float64 {
	if t.CarbonFootprint == nil {
		return 0
	}
	return *t.CarbonFootprint
}

// MerchantName returns the merchant or "" when unset.
func (t Transaction) MerchantName() string {
	if t.Merchant == nil {
		return ""
	}
	return *t.Merchant
}

type User struct {
	ID        int    `json:"id"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"-"`
}
