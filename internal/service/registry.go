package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"aircarer/internal/catalog"
	"aircarer/internal/model"
	"aircarer/internal/pricing"

	"github.com/juju/clock"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var (
	ErrRequestNotFound         = errors.New("request not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrInvalidRating           = errors.New("rating must be between 0 and 5")
	ErrPhotosUnavailable       = errors.New("photo store not configured")
	ErrPhotoNotFound           = errors.New("photo not found")
)

// taskDateLayout is the medium date style shown on booking screens
const taskDateLayout = "Jan 2, 2006"

type EventBus interface {
	PublishRequest(ctx context.Context, requestID string, event map[string]interface{}) error
}

type PhotoStore interface {
	SavePhoto(ctx context.Context, requestID, name, contentType string, size int64, r io.Reader) (model.Photo, error)
	Open(ctx context.Context, photo model.Photo) (io.ReadCloser, error)
}

// Registry owns every cleaning request of the process. All mutation goes
// through its methods; reads hand out copies.
type Registry struct {
	// writeMu serializes each mutation together with its event, so
	// subscribers and streams see events in mutation order. Readers only
	// take mu.
	writeMu sync.Mutex

	mu       sync.RWMutex
	requests []*model.Request
	byID     map[string]*model.Request

	clock  clock.Clock
	bus    EventBus
	log    *zap.Logger
	photos PhotoStore

	jobClient      JobClient
	reminderAfter  time.Duration
	diagnosticHook pricing.Reporter
}

func NewRegistry(clk clock.Clock, bus EventBus, log *zap.Logger) *Registry {
	if clk == nil {
		clk = clock.WallClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		byID:  make(map[string]*model.Request),
		clock: clk,
		bus:   bus,
		log:   log,
	}
}

// SetJobClient enables "still in queue" reminders, fired remindAfter a
// request was submitted
func (r *Registry) SetJobClient(client JobClient, remindAfter time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobClient = client
	r.reminderAfter = remindAfter
}

// SetDiagnosticHook receives every pricing fallback taken by Quote and Submit
func (r *Registry) SetDiagnosticHook(hook pricing.Reporter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diagnosticHook = hook
}

func (r *Registry) SetPhotoStore(store PhotoStore) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photos = store
}

type SubmitInput struct {
	RoomType         model.RoomType
	ServiceMode      model.ServiceMode
	AddOnQuantities  map[string]int
	Address          string
	Postcode         string
	StartTime        string
	EndTime          string
	CustomerComments *string
}

// Quote prices a selection without storing anything
func (r *Registry) Quote(roomType model.RoomType, mode model.ServiceMode, quantities map[string]int) pricing.Quote {
	q, _ := r.quote(roomType, mode, quantities)
	return q
}

func (r *Registry) quote(roomType model.RoomType, mode model.ServiceMode, quantities map[string]int) (pricing.Quote, []model.AddOnSelection) {
	selections, unknown := catalog.Select(quantities)
	report := r.reporter()
	for _, name := range unknown {
		report(pricing.Diagnostic{Kind: pricing.DiagUnknownAddOn, Subject: name, Input: name})
	}
	return pricing.NewQuote(roomType, mode, selections, report), selections
}

// Submit prices and stores a new request in the queue. Input is not
// validated here; unknown add-ons and unparseable price text fall back
// silently and are only reported through the diagnostic hook.
func (r *Registry) Submit(ctx context.Context, in SubmitInput) (float64, model.Request) {
	q, selections := r.quote(in.RoomType, in.ServiceMode, in.AddOnQuantities)

	now := r.clock.Now()
	req := &model.Request{
		ID:               ulid.Make().String(),
		RoomType:         in.RoomType,
		ServiceMode:      in.ServiceMode,
		TotalPrice:       q.Total,
		AddOns:           append([]model.AddOnSelection{}, selections...),
		Address:          in.Address,
		Postcode:         in.Postcode,
		TaskDate:         now.Format(taskDateLayout),
		TaskStartTime:    in.StartTime,
		TaskEndTime:      in.EndTime,
		CustomerComments: cloneString(in.CustomerComments),
		Photos:           []model.Photo{},
		Status:           model.StatusInQueue,
		CreatedAt:        now.Format(time.RFC3339),
		UpdatedAt:        now.Format(time.RFC3339),
	}
	switch in.ServiceMode {
	case model.ModeNonSteam:
		req.StandardPrice = q.RoomPrice
	case model.ModeSteam:
		req.SteamPrice = q.RoomPrice
	case model.ModeIncludingSteam:
		req.StandardPlusSteamPrice = q.RoomPrice
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.byID[req.ID] = req
	out := req.Clone()
	jobClient, remindAfter := r.jobClient, r.reminderAfter
	r.mu.Unlock()

	r.log.Info("Request submitted",
		zap.String("request_id", out.ID),
		zap.String("room_type", string(out.RoomType)),
		zap.String("service_mode", string(out.ServiceMode)),
		zap.Float64("price", q.Total),
	)

	r.publish(ctx, out.ID, map[string]interface{}{
		"type":      "request.submitted",
		"requestId": out.ID,
		"status":    out.Status,
		"price":     q.Total,
	})

	if jobClient != nil && remindAfter > 0 {
		if err := jobClient.ScheduleQueueReminder(out.ID, remindAfter); err != nil {
			r.log.Warn("Failed to schedule queue reminder", zap.String("request_id", out.ID), zap.Error(err))
		}
	}

	return q.Total, out
}

// UpdateStatus moves a request forward along in_queue -> in_progress ->
// completed. Setting the current status again is a no-op.
func (r *Registry) UpdateStatus(ctx context.Context, id string, status model.TaskStatus) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	req, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	from := req.Status
	if from == status {
		r.mu.Unlock()
		return nil
	}
	if !CanTransition(from, status) {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, status)
	}
	req.Status = status
	req.UpdatedAt = r.clock.Now().Format(time.RFC3339)
	r.mu.Unlock()

	r.log.Info("Request status changed",
		zap.String("request_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
	)

	r.publish(ctx, id, map[string]interface{}{
		"type":      "request.status_changed",
		"requestId": id,
		"from":      from,
		"status":    status,
	})
	return nil
}

type FeedbackInput struct {
	Rating           int
	FeedbackText     *string
	ProviderComments *string
}

// UpdateFeedback replaces the rating, feedback text and provider comments
// of a request
func (r *Registry) UpdateFeedback(ctx context.Context, id string, in FeedbackInput) error {
	if in.Rating < 0 || in.Rating > 5 {
		return fmt.Errorf("%w: got %d", ErrInvalidRating, in.Rating)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	req, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	req.Rating = in.Rating
	req.FeedbackText = cloneString(in.FeedbackText)
	req.ProviderComments = cloneString(in.ProviderComments)
	req.UpdatedAt = r.clock.Now().Format(time.RFC3339)
	status := req.Status
	r.mu.Unlock()

	if in.Rating > 0 && status != model.StatusCompleted {
		r.log.Warn("Rating recorded before completion",
			zap.String("request_id", id),
			zap.String("status", string(status)),
			zap.Int("rating", in.Rating),
		)
	}

	r.publish(ctx, id, map[string]interface{}{
		"type":      "request.feedback",
		"requestId": id,
		"rating":    in.Rating,
	})
	return nil
}

// AttachPhoto stores a photo blob and appends its metadata to the request
func (r *Registry) AttachPhoto(ctx context.Context, id, name, contentType string, size int64, body io.Reader) (model.Photo, error) {
	r.mu.RLock()
	_, ok := r.byID[id]
	photos := r.photos
	r.mu.RUnlock()
	if !ok {
		return model.Photo{}, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	if photos == nil {
		return model.Photo{}, ErrPhotosUnavailable
	}

	photo, err := photos.SavePhoto(ctx, id, name, contentType, size, body)
	if err != nil {
		return model.Photo{}, fmt.Errorf("failed to save photo: %w", err)
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	r.mu.Lock()
	req := r.byID[id]
	req.Photos = append(req.Photos, photo)
	req.UpdatedAt = r.clock.Now().Format(time.RFC3339)
	r.mu.Unlock()

	r.publish(ctx, id, map[string]interface{}{
		"type":      "request.photo_added",
		"requestId": id,
		"photoId":   photo.ID,
	})
	return photo, nil
}

// OpenPhoto returns the metadata and blob of a photo attached to a request.
// The caller closes the reader.
func (r *Registry) OpenPhoto(ctx context.Context, id, photoID string) (model.Photo, io.ReadCloser, error) {
	r.mu.RLock()
	req, ok := r.byID[id]
	var photo model.Photo
	found := false
	if ok {
		for _, p := range req.Photos {
			if p.ID == photoID {
				photo, found = p, true
				break
			}
		}
	}
	photos := r.photos
	r.mu.RUnlock()

	if !ok {
		return model.Photo{}, nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	if !found {
		return model.Photo{}, nil, fmt.Errorf("%w: %s", ErrPhotoNotFound, photoID)
	}
	if photos == nil {
		return model.Photo{}, nil, ErrPhotosUnavailable
	}

	rc, err := photos.Open(ctx, photo)
	if err != nil {
		return model.Photo{}, nil, fmt.Errorf("failed to open photo: %w", err)
	}
	return photo, rc, nil
}

func (r *Registry) Get(id string) (model.Request, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.byID[id]
	if !ok {
		return model.Request{}, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	return req.Clone(), nil
}

// All returns every request in submission order
func (r *Registry) All() []model.Request {
	return r.filter(func(*model.Request) bool { return true })
}

// ListByStatus returns the requests whose status is one of statuses, in
// submission order
func (r *Registry) ListByStatus(statuses ...model.TaskStatus) []model.Request {
	set := make(map[model.TaskStatus]bool, len(statuses))
	for _, s := range statuses {
		set[s] = true
	}
	return r.filter(func(req *model.Request) bool { return set[req.Status] })
}

// HasPending reports whether any request is still queued or in progress
func (r *Registry) HasPending() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, req := range r.requests {
		if req.Status == model.StatusInQueue || req.Status == model.StatusInProgress {
			return true
		}
	}
	return false
}

func (r *Registry) filter(keep func(*model.Request) bool) []model.Request {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Request, 0, len(r.requests))
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, req.Clone())
		}
	}
	return out
}

func (r *Registry) reporter() pricing.Reporter {
	r.mu.RLock()
	hook := r.diagnosticHook
	r.mu.RUnlock()
	return func(d pricing.Diagnostic) {
		r.log.Warn("Pricing fallback",
			zap.String("kind", string(d.Kind)),
			zap.String("subject", d.Subject),
			zap.String("input", d.Input),
			zap.Float64("value", d.Value),
		)
		if hook != nil {
			hook(d)
		}
	}
}

func (r *Registry) publish(ctx context.Context, id string, event map[string]interface{}) {
	if r.bus == nil {
		return
	}
	if err := r.bus.PublishRequest(ctx, id, event); err != nil {
		r.log.Warn("Failed to publish event",
			zap.String("request_id", id),
			zap.Any("type", event["type"]),
			zap.Error(err),
		)
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
