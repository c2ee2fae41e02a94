package service

import "aircarer/internal/model"

// DefaultPageSize matches the booking history list
const DefaultPageSize = 3

// Paginate slices a request list into 1-based pages. There is always at
// least one page and out-of-range pages clamp to the nearest valid one.
func Paginate(items []model.Request, page, pageSize int) model.Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalPages := max(1, (len(items)+pageSize-1)/pageSize)
	page = min(max(page, 1), totalPages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))

	return model.Page{
		Items:      append([]model.Request{}, items[start:end]...),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: len(items),
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}
