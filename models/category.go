package models

import "fmt"

type Category string

const (
	TransportFlight Category = "TRANSPORT_FLIGHT"
	TransportCar    Category = "TRANSPORT_CAR"
	TransportPublic Category = "TRANSPORT_PUBLIC"
	FoodMeat        Category = "FOOD_MEAT"
	FoodLocal       Category = "FOOD_LOCAL"
	Energy          Category = "ENERGY"
	Shopping        Category = "SHOPPING"
	Other           Category = "OTHER"
)

// Categories lists every category in declaration order. Analytics uses this
// order to break ties between groups with equal totals.
var Categories = []Category{
	TransportFlight,
	TransportCar,
	TransportPublic,
	FoodMeat,
	FoodLocal,
	Energy,
	Shopping,
	Other,
}

// Rank returns the declaration index of c, or len(Categories) if unknown.
func (c Category) Rank() int {
	for i, known := range Categories {
		if known == c {
			return i
		}
	}
	return len(Categories)
}

func (c Category) Valid() bool {
	return c.Rank() < len(Categories)
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

type PaymentType string

const (
	DebitCard     PaymentType = "DEBIT_CARD"
	CreditCard    PaymentType = "CREDIT_CARD"
	BankTransfer  PaymentType = "BANK_TRANSFER"
	Cash          PaymentType = "CASH"
	MobilePayment PaymentType = "MOBILE_PAYMENT"
	OtherPayment  PaymentType = "OTHER"
)

var paymentTypeNames = map[PaymentType]string{
	DebitCard:     "💳 Debit Card",
	CreditCard:    "💳 Credit Card",
	BankTransfer:  "🏦 Bank Transfer",
	Cash:          "💵 Cash",
	MobilePayment: "📱 Mobile Payment",
	OtherPayment:  "📄 Other",
}

func (p PaymentType) DisplayName() string {
	return paymentTypeNames[p]
}

func ParsePaymentType(s string) (PaymentType, error) {
	p := PaymentType(s)
	if _, ok := paymentTypeNames[p]; !ok {
		return "", fmt.Errorf("unknown payment type %q", s)
	}
	return p, nil
}
