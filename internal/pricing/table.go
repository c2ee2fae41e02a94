package pricing

import "aircarer/internal/model"

// RoomPrices holds the three canonical prices of one room type
type RoomPrices struct {
	NonSteam float64 `json:"nonSteam"`
	Steam    float64 `json:"steam"`
	Combined float64 `json:"combined"`
}

var table = map[model.RoomType]RoomPrices{
	model.RoomStudio:          {NonSteam: 140, Steam: 150, Combined: 290},
	model.RoomOneBedOneBath:   {NonSteam: 180, Steam: 190, Combined: 330},
	model.RoomTwoBedOneBath:   {NonSteam: 220, Steam: 250, Combined: 370},
	model.RoomTwoBedTwoBath:   {NonSteam: 250, Steam: 280, Combined: 430},
	model.RoomThreeBedOneBath: {NonSteam: 300, Steam: 350, Combined: 500},
	model.RoomThreeBedTwoBath: {NonSteam: 350, Steam: 450, Combined: 550},
	model.RoomFourBedTwoBath:  {NonSteam: 450, Steam: 550, Combined: 710},
}

// PricesFor returns the price row of a room type
func PricesFor(roomType model.RoomType) (RoomPrices, bool) {
	p, ok := table[roomType]
	return p, ok
}

// BasePrice looks up the room price for a service mode. Unknown room
// types or modes price at 0.
func BasePrice(roomType model.RoomType, mode model.ServiceMode) float64 {
	p, ok := table[roomType]
	if !ok {
		return 0
	}
	switch mode {
	case model.ModeNonSteam:
		return p.NonSteam
	case model.ModeSteam:
		return p.Steam
	case model.ModeIncludingSteam:
		return p.Combined
	}
	return 0
}
