package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoomType(t *testing.T) {
	tests := []struct {
		in   string
		want RoomType
	}{
		{"studio", RoomStudio},
		{"Studio", RoomStudio},
		{"2 Bedrooms, 2 Bathrooms", RoomTwoBedTwoBath},
		{" 4bed_2bath ", RoomFourBedTwoBath},
	}
	for _, tt := range tests {
		got, err := ParseRoomType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRoomType("penthouse")
	assert.Error(t, err)
}

func TestParseServiceModeAndStatus(t *testing.T) {
	m, err := ParseServiceMode("Including Steam")
	require.NoError(t, err)
	assert.Equal(t, ModeIncludingSteam, m)

	s, err := ParseTaskStatus("In Progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	_, err = ParseTaskStatus("cancelled")
	assert.Error(t, err)
}

func TestRequestClone(t *testing.T) {
	text := "thanks"
	r := Request{
		ID:           "a",
		AddOns:       []AddOnSelection{{Name: "Oven Cleaning", Quantity: 1}},
		FeedbackText: &text,
	}

	c := r.Clone()
	c.AddOns[0].Quantity = 9
	*c.FeedbackText = "changed"

	assert.Equal(t, 1, r.AddOns[0].Quantity)
	assert.Equal(t, "thanks", *r.FeedbackText)
}

func TestAssembleAddress(t *testing.T) {
	assert.Equal(t, "1 George St, Sydney, NSW, 2000", AssembleAddress("1 George St", "", "Sydney", "NSW", "2000"))
	assert.Equal(t, "Unit 4, 9 King St, Newtown, NSW, 2042", AssembleAddress("Unit 4", "9 King St", "Newtown", "NSW", "2042"))
}
