package controllers

import (
	"log/slog"
	"net/http"

	"eventtickets/internal/delivery/http/helpers"
	"eventtickets/internal/domain"
)

// BookTicketRequest is the request body for POST /bookTicket.
type BookTicketRequest struct {
	Email    string `json:"email"`
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
}

// Validate implements Validator. Quantity zero means the default of one.
func (b BookTicketRequest) Validate() []string {
	var errs []string
	if b.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(b.Email) {
		errs = append(errs, "email format is invalid")
	}
	if b.EventID == "" {
		errs = append(errs, "event_id is required")
	} else if !uuidRegex.MatchString(b.EventID) {
		errs = append(errs, "event_id must be a UUID")
	}
	if b.Quantity < 0 {
		errs = append(errs, "quantity must be positive")
	}
	return errs
}

// BookTicketSuccessResponse is the success response envelope for POST /bookTicket (201).
type BookTicketSuccessResponse struct {
	Data  *domain.Ticket    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// BookingController serves ticket purchase and sales analytics endpoints.
type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// BookTicket godoc
// @Summary Book tickets for an event
// @Description Atomically reserves the requested quantity and records a ticket with the price committed at reservation time. Fails fast when not enough seats are left.
// @Tags tickets
// @Accept json
// @Produce json
// @Param booking body BookTicketRequest true "Booking data"
// @Success 201 {object} controllers.BookTicketSuccessResponse "data contains the ticket"
// @Failure 400 {object} helpers.APIResponse "error.code: insufficient_inventory or validation_failed"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (event or buyer)"
// @Failure 409 {object} helpers.APIResponse "error.code: event_finished"
// @Router /bookTicket [post]
func (c *BookingController) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req BookTicketRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}
	ticket, err := c.Service.BookTicket(r.Context(), req.Email, req.EventID, quantity)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ticket)
}

// ListTickets godoc
// @Summary List a buyer's tickets
// @Tags tickets
// @Produce json
// @Param email query string true "Buyer email"
// @Success 200 {object} helpers.APIResponse "data contains the ticket list"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Router /tickets [get]
func (c *BookingController) ListTickets(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	tickets, err := c.Service.ListTicketsByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, tickets)
}

// PurgeTicketsResponse is the payload for DELETE /ticketsByEvent/{eventID}.
type PurgeTicketsResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// PurgeTickets godoc
// @Summary Delete all tickets of an event
// @Description Bulk purge used as part of the finish transition, also callable on its own.
// @Tags tickets
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains deleted_count"
// @Router /ticketsByEvent/{eventID} [delete]
func (c *BookingController) PurgeTickets(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	deleted, err := c.Service.PurgeTicketsByEvent(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, PurgeTicketsResponse{DeletedCount: deleted})
}

// EventSales godoc
// @Summary Bucketed sales for an event
// @Description Returns sold-quantity counts per time bucket plus the raw tickets. filter=day buckets by hour since midnight; week and month bucket by day; all (default) is unbounded.
// @Tags tickets
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param filter query string false "day | week | month | all"
// @Success 200 {object} helpers.APIResponse "data contains sales and tickets"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /eventSales/{eventID} [get]
func (c *BookingController) EventSales(w http.ResponseWriter, r *http.Request) {
	id, ok := pathEventID(w, r)
	if !ok {
		return
	}
	report, err := c.Service.EventSales(r.Context(), id, r.URL.Query().Get("filter"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, report)
}
