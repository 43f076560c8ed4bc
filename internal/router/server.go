package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/go-chi/chi/v5/middleware"

	"equiptrack/internal/auth"
	"equiptrack/internal/config"
	"equiptrack/internal/handlers"
	"equiptrack/internal/types"
)

const (
	compressLevel = 5
)

type Middleware interface {
	Handle(h http.Handler) http.Handler
}

type Router struct {
	address string
	router  *chi.Mux
}

func NewRouter(conf *config.ServerConfig, h *handlers.HandlerSet, middlewares ...Middleware) *Router {

	r := chi.NewRouter()

	for _, m := range middlewares {
		r.Use(m.Handle)
	}
	r.Use(middleware.Compress(compressLevel))

	r.Post("/api/user/register", h.HandleRegisterUser)
	r.Post("/api/user/login", h.HandleLogin)

	authMiddleware := &auth.AuthenticateMiddleware{Secret: conf.Secret}

	r.Group(func(r chi.Router) {

		r.Use(authMiddleware.Handle)

		r.Get("/api/tenders", h.HandleGetTenders)
		r.Get("/api/tenders/{tenderID}", h.HandleGetTender)
		r.Get("/api/tenders/{tenderID}/consignees", h.HandleGetConsignees)
		r.Get("/api/tenders/{tenderID}/items", h.HandleGetTenderItems)
		r.Get("/api/tenders/{tenderID}/loa", h.HandleGetLOA)
		r.Get("/api/tenders/{tenderID}/po", h.HandleGetPO)
		r.Get("/api/catalog/{kind}", h.HandleListCatalog)
		r.Get("/api/machines", h.HandleListMachines)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(types.RoleTenderManager))
			r.Post("/api/tenders", h.HandleCreateTender)
			r.Post("/api/tenders/{tenderID}/consignees", h.HandleCreateConsignee)
			r.Post("/api/tenders/{tenderID}/loa", h.HandleUploadLOA)
			r.Post("/api/tenders/{tenderID}/po", h.HandleUploadPO)
			r.Post("/api/tenders/{tenderID}/items/{kind}/complete", h.HandleMarkItemsComplete)
		})

		// Per-kind upload roles are enforced inside the handler.
		r.Post("/api/consignees/{consigneeID}/documents/{kind}", h.HandleAttachDocument)
		r.Delete("/api/consignees/{consigneeID}/documents/{kind}", h.HandleDetachDocument)
		r.Get("/api/consignees/{consigneeID}/documents/{kind}/file", h.HandleGetDocumentFile)
		r.Patch("/api/consignees/{consigneeID}/status", h.HandleUpdateConsignmentStatus)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(types.RoleAdmin))
			r.Delete("/api/tenders/{tenderID}", h.HandleDeleteTender)
			r.Post("/api/tenders/recompute", h.HandleRecomputeStatuses)
			r.Post("/api/catalog/{kind}", h.HandleAddCatalogItem)
			r.Post("/api/machines", h.HandleAddMachine)
			r.Patch("/api/machines/{machineID}", h.HandleUpdateMachine)
			r.Delete("/api/machines/{machineID}", h.HandleDeactivateMachine)
		})
	})

	return &Router{router: r, address: conf.RunAddress}
}

func (r *Router) ListenAndServe() error {
	err := http.ListenAndServe(r.address, r.router)
	return err
}
