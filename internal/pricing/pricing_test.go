package pricing

import (
	"testing"

	"aircarer/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasePrice_Table(t *testing.T) {
	want := map[model.RoomType][3]float64{
		model.RoomStudio:          {140, 150, 290},
		model.RoomOneBedOneBath:   {180, 190, 330},
		model.RoomTwoBedOneBath:   {220, 250, 370},
		model.RoomTwoBedTwoBath:   {250, 280, 430},
		model.RoomThreeBedOneBath: {300, 350, 500},
		model.RoomThreeBedTwoBath: {350, 450, 550},
		model.RoomFourBedTwoBath:  {450, 550, 710},
	}
	require.Len(t, want, len(model.RoomTypes))

	for _, room := range model.RoomTypes {
		row := want[room]
		assert.Equal(t, row[0], BasePrice(room, model.ModeNonSteam), room)
		assert.Equal(t, row[1], BasePrice(room, model.ModeSteam), room)
		assert.Equal(t, row[2], BasePrice(room, model.ModeIncludingSteam), room)
	}
}

func TestBasePrice_Unknown(t *testing.T) {
	assert.Zero(t, BasePrice("penthouse", model.ModeSteam))
	assert.Zero(t, BasePrice(model.RoomStudio, "dry"))
}

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"$30-$50", 40},
		{"$80-$150", 115},
		{"$50 and up", 50},
		{"$260 and up", 50},
		{"$30", 30},
		{"$50", 50},
		{"$15 per piece", 0},
		{"garbage", 0},
		{"", 0},
		{"$30-", 0},
		{"$10-$20-$30", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePriceRange(tt.text))
		})
	}
}

func TestParsePriceRangeDetailed_Diagnostics(t *testing.T) {
	v, diag := ParsePriceRangeDetailed("$30-$50")
	assert.Equal(t, 40.0, v)
	assert.Nil(t, diag)

	v, diag = ParsePriceRangeDetailed("$260 and up")
	assert.Equal(t, 50.0, v)
	require.NotNil(t, diag)
	assert.Equal(t, DiagAndUpConstant, diag.Kind)

	v, diag = ParsePriceRangeDetailed("$15 per piece")
	assert.Zero(t, v)
	require.NotNil(t, diag)
	assert.Equal(t, DiagUnparseablePrice, diag.Kind)
	assert.Equal(t, "$15 per piece", diag.Input)
}

func TestNewQuote(t *testing.T) {
	var diags []Diagnostic
	q := NewQuote(model.RoomStudio, model.ModeNonSteam, []model.AddOnSelection{
		{Name: "Microwave Cleaning", PriceRangeText: "$30", Quantity: 2},
		{Name: "Oven Cleaning", PriceRangeText: "$30-$50", Quantity: 1},
		{Name: "Blinds Cleaning", PriceRangeText: "$15 per piece", Quantity: 4},
	}, func(d Diagnostic) { diags = append(diags, d) })

	assert.Equal(t, 140.0, q.RoomPrice)
	assert.Equal(t, 100.0, q.AddOnsTotal)
	assert.Equal(t, 240.0, q.Total)
	require.Len(t, q.Lines, 3)
	assert.Equal(t, 60.0, q.Lines[0].Subtotal)
	assert.Zero(t, q.Lines[2].Subtotal)

	require.Len(t, diags, 1)
	assert.Equal(t, "Blinds Cleaning", diags[0].Subject)
}

func TestNewQuote_NilReporter(t *testing.T) {
	q := NewQuote(model.RoomFourBedTwoBath, model.ModeIncludingSteam, []model.AddOnSelection{
		{Name: "Garage Cleaning", PriceRangeText: "$260 and up", Quantity: 1},
	}, nil)
	assert.Equal(t, 760.0, q.Total)
}
