package model

import (
	"fmt"
	"strings"
)

// RoomType represents the room configuration being cleaned
type RoomType string

const (
	RoomStudio          RoomType = "studio"
	RoomOneBedOneBath   RoomType = "1bed_1bath"
	RoomTwoBedOneBath   RoomType = "2bed_1bath"
	RoomTwoBedTwoBath   RoomType = "2bed_2bath"
	RoomThreeBedOneBath RoomType = "3bed_1bath"
	RoomThreeBedTwoBath RoomType = "3bed_2bath"
	RoomFourBedTwoBath  RoomType = "4bed_2bath"
)

// RoomTypes lists every room type in price-table order
var RoomTypes = []RoomType{
	RoomStudio,
	RoomOneBedOneBath,
	RoomTwoBedOneBath,
	RoomTwoBedTwoBath,
	RoomThreeBedOneBath,
	RoomThreeBedTwoBath,
	RoomFourBedTwoBath,
}

var roomLabels = map[RoomType]string{
	RoomStudio:          "Studio",
	RoomOneBedOneBath:   "1 Bedroom, 1 Bathroom",
	RoomTwoBedOneBath:   "2 Bedrooms, 1 Bathroom",
	RoomTwoBedTwoBath:   "2 Bedrooms, 2 Bathrooms",
	RoomThreeBedOneBath: "3 Bedrooms, 1 Bathroom",
	RoomThreeBedTwoBath: "3 Bedrooms, 2 Bathrooms",
	RoomFourBedTwoBath:  "4 Bedrooms, 2 Bathrooms",
}

// Label returns the display label shown on screens
func (r RoomType) Label() string {
	if l, ok := roomLabels[r]; ok {
		return l
	}
	return string(r)
}

// ParseRoomType accepts either the wire code or the display label
func ParseRoomType(s string) (RoomType, error) {
	s = strings.TrimSpace(s)
	for _, r := range RoomTypes {
		if strings.EqualFold(s, string(r)) || strings.EqualFold(s, roomLabels[r]) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown room type %q", s)
}

// ServiceMode represents the cleaning mode
type ServiceMode string

const (
	ModeNonSteam       ServiceMode = "non_steam"
	ModeSteam          ServiceMode = "steam"
	ModeIncludingSteam ServiceMode = "including_steam"
)

var ServiceModes = []ServiceMode{ModeNonSteam, ModeSteam, ModeIncludingSteam}

var modeLabels = map[ServiceMode]string{
	ModeNonSteam:       "Non-Steam",
	ModeSteam:          "Steam",
	ModeIncludingSteam: "Including Steam",
}

func (m ServiceMode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

// ParseServiceMode accepts either the wire code or the display label
func ParseServiceMode(s string) (ServiceMode, error) {
	s = strings.TrimSpace(s)
	for _, m := range ServiceModes {
		if strings.EqualFold(s, string(m)) || strings.EqualFold(s, modeLabels[m]) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown service mode %q", s)
}

// TaskStatus represents request status
type TaskStatus string

const (
	StatusInQueue    TaskStatus = "in_queue"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

var TaskStatuses = []TaskStatus{StatusInQueue, StatusInProgress, StatusCompleted}

var statusLabels = map[TaskStatus]string{
	StatusInQueue:    "In Queue",
	StatusInProgress: "In Progress",
	StatusCompleted:  "Completed",
}

func (s TaskStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// ParseTaskStatus accepts either the wire code or the display label
func ParseTaskStatus(s string) (TaskStatus, error) {
	s = strings.TrimSpace(s)
	for _, st := range TaskStatuses {
		if strings.EqualFold(s, string(st)) || strings.EqualFold(s, statusLabels[st]) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// AddOnDefinition is a catalog entry
type AddOnDefinition struct {
	Name           string `json:"name"`
	PriceRangeText string `json:"priceRange"`
}

// AddOnSelection is an add-on chosen for one request
type AddOnSelection struct {
	Name           string `json:"name"`
	PriceRangeText string `json:"priceRange"`
	Quantity       int    `json:"quantity"`
}

// Photo describes an image blob attached to a request. The blob itself
// is kept by the photo store.
type Photo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	SHA256      string `json:"sha256"`
	ObjectName  string `json:"objectName"`
}

// Request represents one customer booking
type Request struct {
	ID                     string           `json:"id"`
	RoomType               RoomType         `json:"roomType"`
	ServiceMode            ServiceMode      `json:"serviceMode"`
	StandardPrice          float64          `json:"standardPrice"`
	SteamPrice             float64          `json:"steamPrice"`
	StandardPlusSteamPrice float64          `json:"standardPlusSteamPrice"`
	TotalPrice             float64          `json:"totalPrice"`
	AddOns                 []AddOnSelection `json:"addOns"`
	Address                string           `json:"address"`
	Postcode               string           `json:"postcode"`
	TaskDate               string           `json:"taskDate"`
	TaskStartTime          string           `json:"taskStartTime"`
	TaskEndTime            string           `json:"taskEndTime"`
	CustomerComments       *string          `json:"customerComments,omitempty"`
	ProviderComments       *string          `json:"providerComments,omitempty"`
	Photos                 []Photo          `json:"photos"`
	Status                 TaskStatus       `json:"status"`
	Rating                 int              `json:"rating"`
	FeedbackText           *string          `json:"feedbackText,omitempty"`
	CreatedAt              string           `json:"createdAt,omitempty"`
	UpdatedAt              string           `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy so callers never share slices or pointers
// with the registry's records.
func (r Request) Clone() Request {
	c := r
	c.AddOns = append([]AddOnSelection{}, r.AddOns...)
	c.Photos = append([]Photo{}, r.Photos...)
	c.CustomerComments = cloneString(r.CustomerComments)
	c.ProviderComments = cloneString(r.ProviderComments)
	c.FeedbackText = cloneString(r.FeedbackText)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// AssembleAddress joins the address form fields, skipping empty ones
func AssembleAddress(line1, line2, suburb, state, postcode string) string {
	var parts []string
	for _, p := range []string{line1, line2, suburb, state, postcode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Page is one page of a request list
type Page struct {
	Items      []Request `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	TotalItems int       `json:"totalItems"`
	TotalPages int       `json:"totalPages"`
	HasPrev    bool      `json:"hasPrev"`
	HasNext    bool      `json:"hasNext"`
}
