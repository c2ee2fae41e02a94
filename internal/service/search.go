package service

import (
	"fmt"
	"strconv"
	"strings"

	"aircarer/internal/model"
)

// Search filters requests the way the provider homepage does. A numeric
// query matches bedroom or bathroom counts, the exact postcode, or digits
// in the address. Any other query matches the room label, a word of the
// address, or an add-on name. An empty query returns everything.
func (r *Registry) Search(query string) []model.Request {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.All()
	}

	if n, err := strconv.Atoi(q); err == nil {
		bedrooms := fmt.Sprintf("%d bedroom", n)
		bathrooms := fmt.Sprintf("%d bathroom", n)
		digits := strconv.Itoa(n)
		return r.filter(func(req *model.Request) bool {
			label := strings.ToLower(req.RoomType.Label())
			return strings.Contains(label, bedrooms) ||
				strings.Contains(label, bathrooms) ||
				req.Postcode == q ||
				strings.Contains(req.Address, digits)
		})
	}

	return r.filter(func(req *model.Request) bool {
		if strings.Contains(strings.ToLower(req.RoomType.Label()), q) {
			return true
		}
		for _, word := range strings.Fields(strings.ToLower(req.Address)) {
			if strings.Contains(word, q) {
				return true
			}
		}
		for _, a := range req.AddOns {
			if strings.Contains(strings.ToLower(a.Name), q) {
				return true
			}
		}
		return false
	})
}
