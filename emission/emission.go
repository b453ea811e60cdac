// Package emission holds the category emission table and the creation-time
// footprint computation for transactions.
package emission

import "github.com/nemopss/carbon-tracker/backend/models"

const (
	DefaultColor    = "#808080"
	DefaultCurrency = "EUR"
	// SourceCategoryDefault tags footprints derived from the category table.
	SourceCategoryDefault = "CATEGORY_DEFAULT"
)

type factor struct {
	perUnit     float64 // kg CO2e per currency unit
	displayName string
}

var factors = map[models.Category]factor{
	models.TransportFlight: {0.25, "✈️ Transport - Flight"},
	models.TransportCar:    {0.12, "🚗 Transport - Car"},
	models.TransportPublic: {0.03, "🚌 Transport - Public"},
	models.FoodMeat:        {0.08, "🥩 Food - Meat"},
	models.FoodLocal:       {0.02, "🥬 Food - Local/Vegetables"},
	models.Energy:          {0.15, "⚡ Energy"},
	models.Shopping:        {0.05, "🛍️ Shopping"},
	models.Other:           {0.04, "📦 Other"},
}

// Chart colors may omit categories; ColorOf falls back to DefaultColor.
var colors = map[models.Category]string{
	models.TransportFlight: "#FF6B6B",
	models.TransportCar:    "#FFA07A",
	models.TransportPublic: "#90EE90",
	models.FoodMeat:        "#FF8C00",
	models.FoodLocal:       "#32CD32",
	models.Energy:          "#FFD700",
	models.Shopping:        "#9370DB",
	models.Other:           "#808080",
}

func FactorOf(c models.Category) float64 {
	return factors[c].perUnit
}

func DisplayNameOf(c models.Category) string {
	return factors[c].displayName
}

func ColorOf(c models.Category) string {
	if color, ok := colors[c]; ok {
		return color
	}
	return DefaultColor
}

// Catalog lists every category with its factor and presentation metadata.
func Catalog() []models.CategoryInfo {
	catalog := make([]models.CategoryInfo, 0, len(models.Categories))
	for _, c := range models.Categories {
		catalog = append(catalog, models.CategoryInfo{
			Name:         string(c),
			DisplayName:  DisplayNameOf(c),
			CarbonFactor: FactorOf(c),
			Color:        ColorOf(c),
		})
	}
	return catalog
}
