package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/diewo77/tutoring-app/internal/handlers"
	"github.com/diewo77/tutoring-app/internal/httpx"
	"github.com/diewo77/tutoring-app/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	ledger := services.NewLedgerService(db)

	api := router.PathPrefix("/api").Subrouter()

	sh := handlers.NewStudentHandler(db, ledger)
	api.HandleFunc("/students", sh.List).Methods(http.MethodGet)
	api.HandleFunc("/students", sh.Create).Methods(http.MethodPost)
	api.HandleFunc("/students/{id:[0-9]+}", sh.Get).Methods(http.MethodGet)
	api.HandleFunc("/students/{id:[0-9]+}", sh.Update).Methods(http.MethodPut)
	api.HandleFunc("/students/{id:[0-9]+}", sh.Delete).Methods(http.MethodDelete)

	eh := handlers.NewEnrollmentHandler(db)
	api.HandleFunc("/students/{id:[0-9]+}/enrollments", eh.ListForStudent).Methods(http.MethodGet)
	api.HandleFunc("/students/{id:[0-9]+}/enrollments", eh.Create).Methods(http.MethodPost)
	api.HandleFunc("/enrollments/{id:[0-9]+}/end", eh.End).Methods(http.MethodPost)

	ch := handlers.NewCourseHandler(db, ledger)
	api.HandleFunc("/courses", ch.List).Methods(http.MethodGet)
	api.HandleFunc("/courses", ch.Create).Methods(http.MethodPost)
	api.HandleFunc("/courses/{id:[0-9]+}", ch.Update).Methods(http.MethodPut)
	api.HandleFunc("/courses/{id:[0-9]+}", ch.Delete).Methods(http.MethodDelete)

	ph := handlers.NewPaymentHandler(ledger)
	api.HandleFunc("/payments", ph.List).Methods(http.MethodGet)
	api.HandleFunc("/payments", ph.Create).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}/details", ph.Details).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}/pay-remaining", ph.PayRemaining).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}", ph.Delete).Methods(http.MethodDelete)

	dh := handlers.NewDashboardHandler(services.NewDashboardService(db))
	api.HandleFunc("/dashboard", dh.Stats).Methods(http.MethodGet)

	return withCORS(withRecover(withLogging(router)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic recovered: %v", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withCORS lets the SPA dev server talk to the API from another origin.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
