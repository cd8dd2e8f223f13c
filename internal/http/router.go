package http

import (
	"log/slog"
	"net/http"

	"github.com/example/campus-scheduler/internal/application"
)

// Services groups everything the API surface depends on.
type Services struct {
	Auth         *application.AuthService
	Reservations *application.ReservationService
	Rooms        *application.RoomService
	Catalog      *application.CatalogService
	Users        *application.UserService
	Cleaning     *application.CleaningReportService
}

// NewHandler builds the API router. Every route except login and the
// calendar feed requires a bearer token.
func NewHandler(logger *slog.Logger, services Services) http.Handler {
	respond := responder{}

	auth := &authHandler{service: services.Auth, respond: respond}
	users := &userHandler{service: services.Users, respond: respond}
	reservations := &reservationHandler{service: services.Reservations, respond: respond}
	rooms := &roomHandler{service: services.Rooms, respond: respond}
	catalog := &catalogHandler{service: services.Catalog, respond: respond}
	cleaning := &cleaningHandler{service: services.Cleaning, respond: respond}
	calendar := &calendarHandler{
		reservations: services.Reservations,
		rooms:        services.Rooms,
		respond:      respond,
	}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return requireAuth(services.Auth, respond, next)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", auth.login)
	mux.HandleFunc("/api/calendar.ics", calendar.export)

	mux.HandleFunc("/api/reservations", authed(reservations.collection))
	mux.HandleFunc("/api/reservations/", authed(reservations.item))
	mux.HandleFunc("/api/rooms", authed(rooms.collection))
	mux.HandleFunc("/api/rooms/", authed(rooms.item))
	mux.HandleFunc("/api/faculties", authed(catalog.faculties))
	mux.HandleFunc("/api/faculties/", authed(catalog.facultyItem))
	mux.HandleFunc("/api/professors", authed(catalog.professors))
	mux.HandleFunc("/api/professors/", authed(catalog.professorItem))
	mux.HandleFunc("/api/courses", authed(catalog.courses))
	mux.HandleFunc("/api/courses/", authed(catalog.courseItem))
	mux.HandleFunc("/api/periods", authed(catalog.periods))
	mux.HandleFunc("/api/periods/", authed(catalog.periodItem))
	mux.HandleFunc("/api/users", authed(users.collection))
	mux.HandleFunc("/api/cleaning-reports", authed(cleaning.collection))
	mux.HandleFunc("/api/cleaning-reports/", authed(cleaning.item))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		respond.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return requestLogger(logger, mux)
}
