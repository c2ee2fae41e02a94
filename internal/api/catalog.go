package api

import (
	"net/http"

	"aircarer/internal/catalog"
	"aircarer/internal/model"
	"aircarer/internal/pricing"
)

type roomResponse struct {
	Code   model.RoomType     `json:"code"`
	Label  string             `json:"label"`
	Prices pricing.RoomPrices `json:"prices"`
}

func (d Dependencies) listAddOns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": catalog.All(),
	})
}

func (d Dependencies) listRooms(w http.ResponseWriter, r *http.Request) {
	rooms := make([]roomResponse, 0, len(model.RoomTypes))
	for _, room := range model.RoomTypes {
		prices, _ := pricing.PricesFor(room)
		rooms = append(rooms, roomResponse{Code: room, Label: room.Label(), Prices: prices})
	}

	modes := make([]map[string]string, 0, len(model.ServiceModes))
	for _, m := range model.ServiceModes {
		modes = append(modes, map[string]string{"code": string(m), "label": m.Label()})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":        rooms,
		"serviceModes": modes,
	})
}
