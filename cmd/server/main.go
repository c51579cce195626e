package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"emportal/internal/backend"
	"emportal/internal/db"
	"emportal/internal/platform/config"
	"emportal/internal/platform/crypto"
	"emportal/internal/session"
	"emportal/internal/transport/http/handlers/auth"
	"emportal/internal/transport/http/handlers/departments"
	"emportal/internal/transport/http/handlers/employees"
	"emportal/internal/transport/http/handlers/holidays"
	"emportal/internal/transport/http/handlers/leaves"
	"emportal/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	seal, err := crypto.New(cfg.SessionSealKey)
	if err != nil {
		log.Fatalf("session seal key invalid: %v", err)
	}

	sessions := session.NewManager(
		session.NewPGStore(pool, seal),
		cfg.SessionTTL,
		cfg.SessionCookie,
		cfg.SessionCookieSecure,
	)
	client := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout)

	authHandler := auth.New(client, sessions)
	employeeHandler := employees.New(client, sessions)
	departmentHandler := departments.New(client, sessions)
	holidayHandler := holidays.New(client, sessions)
	leaveHandler := leaves.New(client, sessions)

	// Release per-session caches whenever a session leaves the store.
	sessions.OnDestroy(employeeHandler.EvictSession)

	go sweepSessions(ctx, sessions, cfg.SessionSweepEvery)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Session(sessions))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/portal", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)

			r.Get("/employees", employeeHandler.List)
			r.Get("/employees/{empId}", employeeHandler.Detail)
			r.Post("/employees/{empId}/images", employeeHandler.UploadEmployeeImages)
			r.Get("/profile", employeeHandler.Profile)
			r.Put("/profile", employeeHandler.UpdateProfile)

			r.Get("/departments", departmentHandler.List)

			r.Get("/holidays", holidayHandler.List)
			r.Get("/holidays/grid", holidayHandler.Grid)
			r.Get("/holidays/export", holidayHandler.Export)

			r.Get("/leaves/my", leaveHandler.My)
			r.Post("/leaves", leaveHandler.Apply)
			r.Patch("/leaves/{leaveId}", leaveHandler.Edit)
			r.Delete("/leaves/{leaveId}", leaveHandler.Delete)
			r.Post("/leaves/{leaveId}/revoke", leaveHandler.Revoke)
			r.Get("/leaves/export", leaveHandler.ExportMy)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(session.RoleAdmin))

			r.Get("/admin/users", employeeHandler.AdminUsers)
			r.Get("/admin/users/{userId}", employeeHandler.AdminUser)
			r.Put("/admin/users/{userId}", employeeHandler.UpdateAdminUser)
			r.Delete("/admin/users/{userId}", employeeHandler.DeleteEmployee)
			r.Post("/admin/users/{userId}/images", employeeHandler.UploadUserImages)
			r.Post("/admin/approvals/{userId}/approve", employeeHandler.Approve)
			r.Post("/admin/approvals/{userId}/reject", employeeHandler.Reject)
			r.Post("/admin/approvals/{userId}/reopen", employeeHandler.Reopen)
			r.Delete("/admin/images/{imageId}", employeeHandler.DeleteImage)

			r.Post("/departments", departmentHandler.Create)
			r.Delete("/departments/{deptId}", departmentHandler.Delete)

			r.Post("/holidays", holidayHandler.Create)
			r.Put("/holidays/{holidayId}", holidayHandler.Update)
			r.Delete("/holidays/{holidayId}", holidayHandler.Delete)

			r.Get("/admin/leaves/pending", leaveHandler.Pending)
			r.Get("/admin/leaves/processed", leaveHandler.Processed)
			r.Put("/admin/leaves/{leaveId}/decision", leaveHandler.Decide)
			r.Get("/admin/leaves/search", leaveHandler.Search)
			r.Get("/admin/leaves/export", leaveHandler.ExportAll)
		})
	})

	router.Mount("/", newFrontend(cfg.FrontendDir))

	log.Printf("portal listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func sweepSessions(ctx context.Context, sessions *session.Manager, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := sessions.Sweep(ctx); err != nil {
				log.Printf("session sweep failed: %v", err)
			} else if n > 0 {
				log.Printf("session sweep removed %d rows", n)
			}
		}
	}
}
