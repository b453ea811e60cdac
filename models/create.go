package models

type CreateTransaction struct {
	Description     string   `json:"description" example:"Weekly groceries"`
	Amount          *float64 `json:"amount" example:"42.5"`
	Category        *string  `json:"category" example:"FOOD_LOCAL"`
	Merchant        *string  `json:"merchant" example:"Green Market"`
	PaymentType     *string  `json:"paymentType" example:"DEBIT_CARD"`
	Currency        string   `json:"currency" example:"EUR"`
	ConfidenceScore *float64 `json:"confidenceScore" example:"0.9"`
}

type CreateUser struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfile struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}
