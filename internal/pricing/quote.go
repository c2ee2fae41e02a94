package pricing

import "aircarer/internal/model"

// QuoteLine is the priced form of one add-on selection
type QuoteLine struct {
	Name           string  `json:"name"`
	PriceRangeText string  `json:"priceRange"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unitPrice"`
	Subtotal       float64 `json:"subtotal"`
}

// Quote is the full price breakdown of a request
type Quote struct {
	RoomType    model.RoomType    `json:"roomType"`
	ServiceMode model.ServiceMode `json:"serviceMode"`
	RoomPrice   float64           `json:"roomPrice"`
	AddOnsTotal float64           `json:"addOnsTotal"`
	Total       float64           `json:"total"`
	Lines       []QuoteLine       `json:"lines"`
}

// NewQuote prices a room selection plus add-ons. Fallback parses are
// passed to report with the add-on name as subject.
func NewQuote(roomType model.RoomType, mode model.ServiceMode, selections []model.AddOnSelection, report Reporter) Quote {
	q := Quote{
		RoomType:    roomType,
		ServiceMode: mode,
		RoomPrice:   BasePrice(roomType, mode),
		Lines:       make([]QuoteLine, 0, len(selections)),
	}

	for _, sel := range selections {
		unit, diag := ParsePriceRangeDetailed(sel.PriceRangeText)
		if diag != nil {
			diag.Subject = sel.Name
			report.report(*diag)
		}
		line := QuoteLine{
			Name:           sel.Name,
			PriceRangeText: sel.PriceRangeText,
			Quantity:       sel.Quantity,
			UnitPrice:      unit,
			Subtotal:       unit * float64(sel.Quantity),
		}
		q.AddOnsTotal += line.Subtotal
		q.Lines = append(q.Lines, line)
	}

	q.Total = q.RoomPrice + q.AddOnsTotal
	return q
}
