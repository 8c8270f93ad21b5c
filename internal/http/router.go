package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"mythoughts/internal/auth"
	"mythoughts/internal/config"
	"mythoughts/internal/http/handler"
	mw "mythoughts/internal/http/middleware"
	"mythoughts/internal/live"
)

type Services struct {
	Accounts handler.Accounts
	Thoughts handler.Thoughts
	Profiles handler.Profiles
	Hub      *live.Hub
	JWT      *auth.JWT
}

func NewRouter(cfg config.Server, svc Services, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(mw.Observe(log))

	if c := mw.CORS(cfg); c != nil {
		r.Use(c)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	validate := validator.New()
	requireAuth := auth.RequireAuth(svc.JWT)

	r.Route("/v1", func(r chi.Router) {
		ah := &handler.AuthHandler{Accounts: svc.Accounts, Validate: validate, Log: log}
		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit(auth.NewLimiter(cfg.LoginRPS, cfg.LoginBurst)))
			r.Post("/auth/register", ah.Register)
			r.Post("/auth/login", ah.Login)
		})

		me := &handler.MeHandler{}
		r.With(requireAuth).Get("/me", me.Me)

		th := &handler.ThoughtHandler{Svc: svc.Thoughts, Validate: validate, Log: log}
		if svc.Hub != nil {
			th.Changed = svc.Hub.Changed
		}
		r.Route("/thoughts", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", th.List)
			r.Post("/", th.Create)
			r.Get("/{id}", th.Get)
			r.Patch("/{id}", th.Update)
			r.Delete("/{id}", th.Delete)
		})

		uh := &handler.UserHandler{Svc: svc.Profiles, Log: log}
		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/", uh.Range)
			r.Get("/{id}", uh.Get)
			r.Put("/{id}", uh.Merge)
		})

		lh := &handler.LiveHandler{
			Hub: svc.Hub,
			Log: log,
			Upgrader: websocket.Upgrader{
				ReadBufferSize:  1024,
				WriteBufferSize: 4096,
				CheckOrigin:     originChecker(cfg.CORSAllowedOrigins),
			},
		}
		r.With(requireAuth).Get("/live/thoughts", lh.Thoughts)
	})

	return r
}

// originChecker allows non-browser clients, which send no Origin, and
// browsers from the CORS allow list.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}
