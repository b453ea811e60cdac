package models

type LoginResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

type ProfileResponse struct {
	ID        int    `json:"id" example:"1"`
	Firstname string `json:"firstname" example:"Jane"`
	Lastname  string `json:"lastname" example:"Doe"`
	Email     string `json:"email" example:"jane@example.com"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"error"`
}

type CategoryInfo struct {
	Name         string  `json:"name" example:"FOOD_MEAT"`
	DisplayName  string  `json:"displayName" example:"🥩 Food - Meat"`
	CarbonFactor float64 `json:"carbonFactor" example:"0.08"`
	Color        string  `json:"color" example:"#FF8C00"`
}

type CarbonSummary struct {
	CurrentMonth float64 `json:"currentMonth" example:"12.4"`
	LastMonth    float64 `json:"lastMonth" example:"15.1"`
	Month        string  `json:"month" example:"2025-03"`
}

type TopCategory struct {
	Name        string  `json:"name" example:"FOOD_MEAT"`
	DisplayName string  `json:"displayName" example:"🥩 Food - Meat"`
	CO2         float64 `json:"co2" example:"12"`
	Percentage  float64 `json:"percentage" example:"83.3"`
}

type AnalyticsSummary struct {
	TotalCO2                 float64      `json:"totalCO2" example:"14.4"`
	AverageCO2PerTransaction float64      `json:"averageCO2PerTransaction" example:"4.8"`
	TransactionCount         int          `json:"transactionCount" example:"3"`
	TopCategory              *TopCategory `json:"topCategory"`
	EvolutionPercentage      float64      `json:"evolutionPercentage" example:"-15"`
	PeriodStart              string       `json:"periodStart" example:"2025-01-01"`
	PeriodEnd                string       `json:"periodEnd" example:"2025-01-31"`
}

type TimeSeriesPoint struct {
	Date             string  `json:"date" example:"2025-01-15"`
	CO2Value         float64 `json:"co2Value" example:"3.2"`
	TransactionCount int     `json:"transactionCount" example:"2"`
}

type CategoryBreakdown struct {
	Category         string  `json:"category" example:"FOOD_MEAT"`
	DisplayName      string  `json:"displayName" example:"🥩 Food - Meat"`
	TotalCO2         float64 `json:"totalCO2" example:"12"`
	Percentage       float64 `json:"percentage" example:"83.3"`
	TransactionCount int     `json:"transactionCount" example:"2"`
	Color            string  `json:"color" example:"#FF8C00"`
}

type MerchantAnalytics struct {
	MerchantName     string  `json:"merchantName" example:"Acme"`
	TotalCO2         float64 `json:"totalCO2" example:"8.5"`
	TransactionCount int     `json:"transactionCount" example:"4"`
	AverageCO2       float64 `json:"averageCO2" example:"2.13"`
	PrimaryCategory  string  `json:"primaryCategory" example:"🛍️ Shopping"`
}

type InsightType string

const (
	InsightTrend          InsightType = "trend"
	InsightAlert          InsightType = "alert"
	InsightRecommendation InsightType = "recommendation"
)

type InsightSeverity string

const (
	SeverityInfo    InsightSeverity = "info"
	SeverityWarning InsightSeverity = "warning"
	SeveritySuccess InsightSeverity = "success"
)

type Insight struct {
	Type            InsightType     `json:"type" example:"alert"`
	Severity        InsightSeverity `json:"severity" example:"warning"`
	Title           string          `json:"title" example:"High CO₂ Category"`
	Message         string          `json:"message"`
	Actionable      bool            `json:"actionable" example:"true"`
	SuggestedAction *string         `json:"suggestedAction"`
}
