package controllers

import (
	"log/slog"
	"net/http"

	"eventtickets/internal/delivery/http/helpers"
	"eventtickets/internal/domain"
)

// TrackViewRequest is the request body for POST /trackView. ViewerID is
// optional; anonymous views carry no demographic snapshot.
type TrackViewRequest struct {
	EventID  string `json:"event_id"`
	ViewerID string `json:"viewer_id"`
}

// Validate implements Validator.
func (t TrackViewRequest) Validate() []string {
	var errs []string
	if t.EventID == "" {
		errs = append(errs, "event_id is required")
	} else if !uuidRegex.MatchString(t.EventID) {
		errs = append(errs, "event_id must be a UUID")
	}
	if t.ViewerID != "" && !uuidRegex.MatchString(t.ViewerID) {
		errs = append(errs, "viewer_id must be a UUID")
	}
	return errs
}

// TrackingController serves the demand-signal endpoints.
type TrackingController struct {
	Logger  *slog.Logger
	Service domain.TrackingService
}

func NewTrackingController(logger *slog.Logger, svc domain.TrackingService) *TrackingController {
	return &TrackingController{
		Logger:  logger,
		Service: svc,
	}
}

// TrackView godoc
// @Summary Record a view of an event
// @Description Appends to the event's view log; the pricing engine reads the cumulative count as its demand signal.
// @Tags views
// @Accept json
// @Produce json
// @Param view body TrackViewRequest true "View data"
// @Success 201 {object} helpers.APIResponse "data contains the recorded view"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or viewer)"
// @Router /trackView [post]
func (c *TrackingController) TrackView(w http.ResponseWriter, r *http.Request) {
	var req TrackViewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	view, err := c.Service.TrackView(r.Context(), req.EventID, req.ViewerID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, view)
}

// EventViews godoc
// @Summary Bucketed view counts for an event
// @Description filter=day buckets by hour since midnight; week and month bucket by day; all (default) is unbounded.
// @Tags views
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param filter query string false "day | week | month | all"
// @Success 200 {object} helpers.APIResponse "data contains the bucketed series"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /eventViews/{eventID} [get]
func (c *TrackingController) EventViews(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	views, err := c.Service.EventViews(r.Context(), id, r.URL.Query().Get("filter"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, views)
}
