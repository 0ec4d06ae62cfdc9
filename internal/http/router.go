package http

import (
	"net/http"

	"placement/internal/auth"
	"placement/internal/config"
	"placement/internal/contact"
	"placement/internal/document"
	ph "placement/internal/http/handler"
	mw "placement/internal/http/middleware"
	"placement/internal/message"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// Services bundles the domain services the router mounts.
type Services struct {
	Contacts  *contact.Service
	Messages  *message.Service
	Documents *document.Service
}

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, svc Services) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &ph.AuthHandler{DB: db, JWT: jwtSvc}
	r.Post("/auth/register", ah.Register)
	r.Post("/auth/login", ah.Login)

	ch := &ph.ContactHandler{Svc: svc.Contacts}
	r.Route("/contacts", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", ch.List)
		r.Post("/", ch.Create)

		r.Route("/{contactID}", func(r chi.Router) {
			r.Get("/", ch.Get)
			r.Put("/", ch.Update)
			r.Delete("/", ch.Delete)
			r.Put("/category", ch.ChangeCategory)

			r.Post("/emails", ch.AddEmail)
			r.Put("/emails/{emailID}", ch.ChangeEmail)
			r.Delete("/emails/{emailID}", ch.DeleteEmail)

			r.Post("/addresses", ch.AddAddress)
			r.Put("/addresses/{addressID}", ch.ChangeAddress)
			r.Delete("/addresses/{addressID}", ch.DeleteAddress)

			r.Post("/phone", ch.AddTelephone)
			r.Put("/phone/{phoneID}", ch.ChangeTelephone)
			r.Delete("/phone/{phoneID}", ch.DeleteTelephone)
		})
	})

	mh := &ph.MessageHandler{Svc: svc.Messages}
	r.Route("/messages", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", mh.List)
		r.Post("/", mh.Create)

		r.Route("/{messageID}", func(r chi.Router) {
			r.Get("/", mh.Get)
			r.Post("/", mh.ChangeState)
			r.Put("/priority", mh.ChangePriority)
			r.Get("/history", mh.History)
		})
	})

	dh := &ph.DocumentHandler{Svc: svc.Documents}
	r.Route("/documents", func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Get("/", dh.List)
		r.Post("/", dh.Create)

		r.Route("/{documentID}", func(r chi.Router) {
			r.Get("/", dh.Get)
			r.Get("/data", dh.GetData)
			r.Put("/", dh.Update)
			r.Delete("/", dh.Delete)
		})
	})

	return r
}
