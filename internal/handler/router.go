package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/parlorchat/parlor/backend/internal/handler/chat"
	middlewarePkg "github.com/parlorchat/parlor/backend/internal/middleware"
	chatService "github.com/parlorchat/parlor/backend/internal/service/chat"
	"github.com/parlorchat/parlor/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler := chat.New(chatSvc)

	r.Route("/api", func(api chi.Router) {
		chatHandler.RegisterRoutes(api)

		api.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
	})

	return r
}
