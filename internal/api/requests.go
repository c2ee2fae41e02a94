package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"aircarer/internal/model"
	"aircarer/internal/pubsub"
	"aircarer/internal/schema"
	"aircarer/internal/service"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// replayLimit caps the events returned by one replay call
const replayLimit = 100

type addressBody struct {
	Line1    string `json:"line1"`
	Line2    string `json:"line2,omitempty"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

type SubmitRequestRequest struct {
	RoomType         string         `json:"roomType"`
	ServiceMode      string         `json:"serviceMode"`
	AddOns           map[string]int `json:"addOns,omitempty"`
	Address          addressBody    `json:"address"`
	StartTime        string         `json:"startTime"`
	EndTime          string         `json:"endTime"`
	CustomerComments *string        `json:"customerComments,omitempty"`
}

type QuoteRequest struct {
	RoomType    string         `json:"roomType"`
	ServiceMode string         `json:"serviceMode"`
	AddOns      map[string]int `json:"addOns,omitempty"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type FeedbackRequest struct {
	Rating           int     `json:"rating"`
	FeedbackText     *string `json:"feedbackText,omitempty"`
	ProviderComments *string `json:"providerComments,omitempty"`
}

// decodeBody validates the body against a named schema before decoding it into dst
func (d Dependencies) decodeBody(r *http.Request, schemaName string, dst interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %v", schema.ErrInvalidBody, err)
	}
	if err := d.Schemas.Validate(schemaName, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("%w: %v", schema.ErrInvalidBody, err)
	}
	return nil
}

func parseSelection(roomType, serviceMode string) (model.RoomType, model.ServiceMode, error) {
	room, err := model.ParseRoomType(roomType)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", schema.ErrInvalidBody, err)
	}
	mode, err := model.ParseServiceMode(serviceMode)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", schema.ErrInvalidBody, err)
	}
	return room, mode, nil
}

func (d Dependencies) createQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if err := d.decodeBody(r, schema.Quote, &req); err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	room, mode, err := parseSelection(req.RoomType, req.ServiceMode)
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	writeJSON(w, http.StatusOK, d.Registry.Quote(room, mode, req.AddOns))
}

func (d Dependencies) submitRequest(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequestRequest
	if err := d.decodeBody(r, schema.SubmitRequest, &req); err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	room, mode, err := parseSelection(req.RoomType, req.ServiceMode)
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	a := req.Address
	price, created := d.Registry.Submit(r.Context(), service.SubmitInput{
		RoomType:         room,
		ServiceMode:      mode,
		AddOnQuantities:  req.AddOns,
		Address:          model.AssembleAddress(a.Line1, a.Line2, a.Suburb, a.State, a.Postcode),
		Postcode:         a.Postcode,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		CustomerComments: req.CustomerComments,
	})

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"price":   price,
		"request": created,
	})
}

func (d Dependencies) listRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var statuses []model.TaskStatus
	if raw := q.Get("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			st, err := model.ParseTaskStatus(part)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid_status", err.Error(), d.Log)
				return
			}
			statuses = append(statuses, st)
		}
	}

	page, err := intParam(q.Get("page"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_page", "page must be an integer", d.Log)
		return
	}
	pageSize, err := intParam(q.Get("pageSize"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_page_size", "pageSize must be an integer", d.Log)
		return
	}

	items := d.Registry.All()
	if len(statuses) > 0 {
		items = d.Registry.ListByStatus(statuses...)
	}

	writeJSON(w, http.StatusOK, service.Paginate(items, page, pageSize))
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func (d Dependencies) searchRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": d.Registry.Search(r.URL.Query().Get("q")),
	})
}

func (d Dependencies) pendingRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"pending": d.Registry.HasPending(),
	})
}

func (d Dependencies) getRequest(w http.ResponseWriter, r *http.Request) {
	req, err := d.Registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request":       req,
		"statusMessage": service.StatusMessage(req),
	})
}

func (d Dependencies) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body StatusRequest
	if err := d.decodeBody(r, schema.StatusUpdate, &body); err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	status, err := model.ParseTaskStatus(body.Status)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_status", err.Error(), d.Log)
		return
	}

	if err := d.Registry.UpdateStatus(r.Context(), id, status); err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	req, err := d.Registry.Get(id)
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"request":       req,
		"statusMessage": service.StatusMessage(req),
	})
}

func (d Dependencies) updateFeedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body FeedbackRequest
	if err := d.decodeBody(r, schema.Feedback, &body); err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	err := d.Registry.UpdateFeedback(r.Context(), id, service.FeedbackInput{
		Rating:           body.Rating,
		FeedbackText:     body.FeedbackText,
		ProviderComments: body.ProviderComments,
	})
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}

	req, err := d.Registry.Get(id)
	if err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (d Dependencies) requestEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := d.Registry.Get(id); err != nil {
		writeServiceError(w, err, d.Log)
		return
	}
	if d.Streams == nil {
		WriteError(w, http.StatusServiceUnavailable, "replay_unavailable", "Event replay requires Redis", d.Log)
		return
	}

	var since int64
	if s := r.URL.Query().Get("since"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			WriteError(w, http.StatusBadRequest, "invalid_since", "since must be a non-negative integer", d.Log)
			return
		}
		since = v
	}

	events, err := d.Streams.ReplayEvents(r.Context(), pubsub.RequestChannel(id), since, replayLimit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "replay_failed", err.Error(), d.Log)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": events,
	})
}
