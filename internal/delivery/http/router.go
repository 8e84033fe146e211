package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventtickets/internal/delivery/http/controllers"
	"eventtickets/internal/delivery/http/helpers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(events *controllers.EventController, bookings *controllers.BookingController, tracking *controllers.TrackingController) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Events
	mux.HandleFunc("GET /events", events.ListEvents)
	mux.HandleFunc("POST /events", events.CreateEvent)
	mux.HandleFunc("GET /events/{eventID}", events.GetEvent)
	mux.HandleFunc("PUT /events/{eventID}", events.UpdateEvent)
	mux.HandleFunc("PATCH /events/{eventID}/status", events.FinishEvent)
	mux.HandleFunc("DELETE /events/{eventID}", events.DeleteEvent)
	mux.HandleFunc("GET /searchEvents", events.SearchEvents)

	// Tickets
	mux.HandleFunc("POST /bookTicket", bookings.BookTicket)
	mux.HandleFunc("GET /tickets", bookings.ListTickets)
	mux.HandleFunc("DELETE /ticketsByEvent/{eventID}", bookings.PurgeTickets)
	mux.HandleFunc("GET /eventSales/{eventID}", bookings.EventSales)

	// Views
	mux.HandleFunc("POST /trackView", tracking.TrackView)
	mux.HandleFunc("GET /eventViews/{eventID}", tracking.EventViews)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
