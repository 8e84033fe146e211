package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"eventtickets/internal/delivery/http/helpers"
	"eventtickets/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// emailRegex matches a simple email format (local@domain with at least one dot in domain).
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// eventTypes are the accepted event categories.
var eventTypes = map[string]struct{}{
	"music": {}, "entertainment": {}, "sport": {}, "other": {},
}

// writeServiceError maps domain errors to envelope responses. err must be
// non-nil; unexpected errors are logged and returned as internal_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, verr.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrInsufficientInventory):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInsufficientInventory, "not enough seats available")
	case errors.Is(err, domain.ErrEventFinished):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventFinished, "event already finished")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "internal error")
	}
}

// pathEventID extracts and validates the {eventID} path value. Writes a 400
// and returns false when it is missing or not a UUID.
func pathEventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("eventID")
	if id == "" || !uuidRegex.MatchString(id) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event ID format")
		return "", false
	}
	return id, true
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Location    string          `json:"location"`
	City        string          `json:"city"`
	Lat         float64         `json:"lat"`
	Lon         float64         `json:"lon"`
	Type        string          `json:"type"`
	StartsAt    time.Time       `json:"starts_at"`
	Price       decimal.Decimal `json:"price"`
	PriceMin    decimal.Decimal `json:"price_min"`
	PriceMax    decimal.Decimal `json:"price_max"`
	SeatNum     int             `json:"seat_num"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.Description == "" {
		errs = append(errs, "description is required")
	}
	if c.Location == "" {
		errs = append(errs, "location is required")
	}
	if c.City == "" {
		errs = append(errs, "city is required")
	}
	if c.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	if c.SeatNum <= 0 {
		errs = append(errs, "seat_num must be positive")
	}
	if c.Lat < -90 || c.Lat > 90 {
		errs = append(errs, "lat must be between -90 and 90")
	}
	if c.Lon < -180 || c.Lon > 180 {
		errs = append(errs, "lon must be between -180 and 180")
	}
	if c.Type != "" {
		if _, ok := eventTypes[c.Type]; !ok {
			errs = append(errs, "type must be one of music, entertainment, sport, other")
		}
	}
	return errs
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventController serves the event catalog and lifecycle endpoints.
type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Create a new ticketed event. Inventory starts full (seats_left = seat_num), revenue at zero, and status running; those fields are server-controlled and not accepted in the body.
// @Tags events
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	eventType := req.Type
	if eventType == "" {
		eventType = "other"
	}
	event := &domain.Event{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
		City:        req.City,
		Lat:         req.Lat,
		Lon:         req.Lon,
		Type:        eventType,
		StartsAt:    req.StartsAt,
		Price:       req.Price,
		PriceMin:    req.PriceMin,
		PriceMax:    req.PriceMax,
		SeatNum:     req.SeatNum,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List all events
// @Description Returns every event with its current price, availability, and status.
// @Tags events
// @Produce json
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. All fields
// optional; omitted fields are unchanged. Pricing and inventory fields cannot
// be edited here.
type UpdateEventRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"image_url"`
	Location    *string    `json:"location"`
	City        *string    `json:"city"`
	Type        *string    `json:"type"`
	Lat         *float64   `json:"lat"`
	Lon         *float64   `json:"lon"`
	StartsAt    *time.Time `json:"starts_at"`
}

// Validate implements Validator. Optional bounds for lat (-90..90) and lon (-180..180).
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Lat != nil && (*u.Lat < -90 || *u.Lat > 90) {
		errs = append(errs, "lat must be between -90 and 90")
	}
	if u.Lon != nil && (*u.Lon < -180 || *u.Lon > 180) {
		errs = append(errs, "lon must be between -180 and 180")
	}
	if u.Type != nil {
		if _, ok := eventTypes[*u.Type]; !ok {
			errs = append(errs, "type must be one of music, entertainment, sport, other")
		}
	}
	return errs
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Partial update of descriptive fields. Price, seats, revenue, and status are not editable here.
// @Tags events
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param event body UpdateEventRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request or validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), id, domain.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
		City:        req.City,
		Type:        req.Type,
		Lat:         req.Lat,
		Lon:         req.Lon,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// FinishEvent godoc
// @Summary Mark an event finished
// @Description One-way transition to finished. Further reservations are rejected; configured ticket purging runs as part of the transition.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the finished event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/status [patch]
func (c *EventController) FinishEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	event, err := c.Service.FinishEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event together with its tickets and view log.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), id); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "event deleted"})
}

// SearchEvents godoc
// @Summary Search events by title
// @Tags events
// @Produce json
// @Param query query string true "Case-insensitive title substring"
// @Success 200 {object} helpers.APIResponse "data contains matching events"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /searchEvents [get]
func (c *EventController) SearchEvents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	events, err := c.Service.SearchEvents(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}
