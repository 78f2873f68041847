// Package rest wires the tool surface onto chi: one route per tool under
// /tools, plus the liveness/detailed health endpoints, auth middleware
// ahead of everything under /tools, and the standard
// RequestID/RealIP/Recoverer/Logger/CORS middleware chain.
package rest

import (
	"net/http"

	"ctxmemory/application/mediator"
	"ctxmemory/interfaces/http/rest/middleware"
	"ctxmemory/pkg/auth"
	pkgerrors "ctxmemory/pkg/errors"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type Router struct {
	mediator     *mediator.Mediator
	logger       *zap.Logger
	errorHandler *pkgerrors.ErrorHandler
	authKeys     auth.KeyTable
	authRequired bool
	enableCORS   bool
}

func NewRouter(med *mediator.Mediator, logger *zap.Logger, errorHandler *pkgerrors.ErrorHandler, authKeys auth.KeyTable, authRequired, enableCORS bool) *Router {
	return &Router{
		mediator:     med,
		logger:       logger,
		errorHandler: errorHandler,
		authKeys:     authKeys,
		authRequired: authRequired,
		enableCORS:   enableCORS,
	}
}

func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))

	if rt.enableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	toolHandler := NewToolHandler(rt.mediator, rt.logger, rt.errorHandler)

	router.Get("/health", toolHandler.Health)

	router.Route("/tools", func(r chi.Router) {
		r.Use(auth.Middleware(rt.authKeys, rt.authRequired, func(w http.ResponseWriter, r *http.Request, err error) {
			rt.errorHandler.Handle(w, r, chimiddleware.GetReqID(r.Context()), err)
		}))

		r.Post("/store_context", toolHandler.StoreContext)
		r.Post("/retrieve_context", toolHandler.RetrieveContext)
		r.Post("/query_graph", toolHandler.QueryGraph)
		r.Post("/update_scratchpad", toolHandler.UpdateScratchpad)
		r.Get("/get_agent_state", toolHandler.GetAgentState)
		r.Post("/delete_context", toolHandler.DeleteContext)
		r.Post("/forget_context", toolHandler.ForgetContext)
		r.Get("/tools", toolHandler.Tools)
		r.Get("/health_detailed", toolHandler.HealthDetailed)
	})

	return router
}
