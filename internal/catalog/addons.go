package catalog

import (
	"sort"

	"aircarer/internal/model"
)

var addOns = []model.AddOnDefinition{
	{Name: "Wall Washing", PriceRangeText: "$50 and up"},
	{Name: "Oven Cleaning", PriceRangeText: "$30-$50"},
	{Name: "Rangehood Cleaning", PriceRangeText: "$30-$50"},
	{Name: "Microwave Cleaning", PriceRangeText: "$30"},
	{Name: "Fridge Cleaning", PriceRangeText: "$30-$50"},
	{Name: "Blinds Cleaning", PriceRangeText: "$15 per piece"},
	{Name: "Garage Cleaning", PriceRangeText: "$260 and up"},
	{Name: "Carpet Steam Cleaning", PriceRangeText: "$80-$150"},
	{Name: "Window Cleaning", PriceRangeText: "$50"},
	{Name: "Balcony Cleaning", PriceRangeText: "$50 and up"},
	{Name: "Single Carpet Cleaning", PriceRangeText: "$60 and up"},
	{Name: "Tile and Grout Cleaning", PriceRangeText: "$40 and up"},
}

var byName = func() map[string]model.AddOnDefinition {
	m := make(map[string]model.AddOnDefinition, len(addOns))
	for _, a := range addOns {
		m[a.Name] = a
	}
	return m
}()

// All returns the add-on catalog in display order
func All() []model.AddOnDefinition {
	return append([]model.AddOnDefinition(nil), addOns...)
}

// Lookup finds an add-on by its exact name
func Lookup(name string) (model.AddOnDefinition, bool) {
	a, ok := byName[name]
	return a, ok
}

// Select builds the selections for every catalog entry with a positive
// quantity, in catalog order. Names with a positive quantity that are
// not in the catalog come back sorted in unknown.
func Select(quantities map[string]int) (selections []model.AddOnSelection, unknown []string) {
	for _, a := range addOns {
		if q := quantities[a.Name]; q > 0 {
			selections = append(selections, model.AddOnSelection{
				Name:           a.Name,
				PriceRangeText: a.PriceRangeText,
				Quantity:       q,
			})
		}
	}
	for name, q := range quantities {
		if _, ok := byName[name]; !ok && q > 0 {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return selections, unknown
}
