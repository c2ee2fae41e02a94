package service

import (
	"context"
	"testing"

	"aircarer/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_Search(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	_, studio := r.Submit(ctx, SubmitInput{
		RoomType: model.RoomStudio, ServiceMode: model.ModeSteam,
		Address: "12 Ocean Rd, Bondi, NSW, 2026", Postcode: "2026",
		AddOnQuantities: map[string]int{"Oven Cleaning": 1},
	})
	_, threeBed := r.Submit(ctx, SubmitInput{
		RoomType: model.RoomThreeBedTwoBath, ServiceMode: model.ModeNonSteam,
		Address: "7 Hill St, Parramatta, NSW, 2150", Postcode: "2150",
	})
	_, oneBed := r.Submit(ctx, SubmitInput{
		RoomType: model.RoomOneBedOneBath, ServiceMode: model.ModeNonSteam,
		Address: "3 Park Ave, Ryde, NSW, 2112", Postcode: "2112",
	})

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{studio.ID, threeBed.ID, oneBed.ID}},
		{"3", []string{threeBed.ID, oneBed.ID}},
		{"2", []string{studio.ID, threeBed.ID, oneBed.ID}},
		{"1", []string{studio.ID, threeBed.ID, oneBed.ID}},
		{"2150", []string{threeBed.ID}},
		{"7", []string{threeBed.ID}},
		{"studio", []string{studio.ID}},
		{"BONDI", []string{studio.ID}},
		{"oven", []string{studio.ID}},
		{"bathrooms", []string{threeBed.ID}},
		{"nowhere", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(r.Search(tt.query)))
		})
	}
}
