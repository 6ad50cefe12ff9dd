package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/railstack/layoutd/internal/buildinfo"
	"github.com/railstack/layoutd/internal/config"
	"github.com/railstack/layoutd/internal/middleware"
	"github.com/railstack/layoutd/internal/services/control"
	"github.com/railstack/layoutd/internal/services/layout"
	"github.com/railstack/layoutd/internal/ws"
)

// Router wraps the mux router and the services the handlers depend on
type Router struct {
	*mux.Router
	db      *gorm.DB
	layout  *layout.Service
	control *control.Dispatcher
	hub     *ws.Hub
	logger  *zap.Logger
	cfg     *config.Config
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *gorm.DB, layoutSvc *layout.Service, dispatcher *control.Dispatcher, hub *ws.Hub, logger *zap.Logger, cfg *config.Config) *Router {
	rt := &Router{
		Router:  mux.NewRouter(),
		db:      db,
		layout:  layoutSvc,
		control: dispatcher,
		hub:     hub,
		logger:  logger,
		cfg:     cfg,
	}

	rt.Use(mux.MiddlewareFunc(middleware.Recover(logger)))
	rt.Use(mux.MiddlewareFunc(middleware.RequestLogger(logger)))
	rt.Use(mux.MiddlewareFunc(middleware.CORS(cfg.CORSOrigins)))

	rt.HandleFunc("/health", rt.healthCheck).Methods("GET")
	rt.HandleFunc("/version", rt.version).Methods("GET")

	categories := rt.PathPrefix("/categories").Subrouter()
	categories.HandleFunc("", rt.listCategories).Methods("GET")
	categories.HandleFunc("", rt.createCategory).Methods("POST")
	categories.HandleFunc("/{id}", rt.getCategory).Methods("GET")
	categories.HandleFunc("/{id}", rt.updateCategory).Methods("PUT")
	categories.HandleFunc("/{id}", rt.deleteCategory).Methods("DELETE")

	accessories := rt.PathPrefix("/accessories").Subrouter()
	accessories.HandleFunc("", rt.listAccessories).Methods("GET")
	accessories.HandleFunc("", rt.createAccessory).Methods("POST")
	accessories.HandleFunc("/{id}", rt.getAccessory).Methods("GET")
	accessories.HandleFunc("/{id}", rt.updateAccessory).Methods("PUT")
	accessories.HandleFunc("/{id}", rt.deleteAccessory).Methods("DELETE")

	actions := rt.PathPrefix("/actions/accessories").Subrouter()
	actions.HandleFunc("/{id}/on", rt.accessoryOn).Methods("POST")
	actions.HandleFunc("/{id}/off", rt.accessoryOff).Methods("POST")
	actions.HandleFunc("/{id}/pulse/{ms}", rt.accessoryPulse).Methods("POST")
	actions.HandleFunc("/{id}/apply", rt.accessoryApply).Methods("POST")

	trackLines := rt.PathPrefix("/trackLines").Subrouter()
	trackLines.HandleFunc("", rt.listTrackLines).Methods("GET")
	trackLines.HandleFunc("", rt.createTrackLine).Methods("POST")
	trackLines.HandleFunc("/{id}", rt.getTrackLine).Methods("GET")
	trackLines.HandleFunc("/{id}", rt.updateTrackLine).Methods("PUT")
	trackLines.HandleFunc("/{id}", rt.deleteTrackLine).Methods("DELETE")

	sections := rt.PathPrefix("/sections").Subrouter()
	sections.HandleFunc("", rt.listSections).Methods("GET")
	sections.HandleFunc("", rt.createSection).Methods("POST")
	sections.HandleFunc("/{id}", rt.getSection).Methods("GET")
	sections.HandleFunc("/{id}", rt.updateSection).Methods("PUT")
	sections.HandleFunc("/{id}", rt.deleteSection).Methods("DELETE")

	switches := rt.PathPrefix("/switches").Subrouter()
	switches.HandleFunc("", rt.listSwitches).Methods("GET")
	switches.HandleFunc("", rt.createSwitch).Methods("POST")
	switches.HandleFunc("/{id}", rt.getSwitch).Methods("GET")
	switches.HandleFunc("/{id}", rt.updateSwitch).Methods("PUT")
	switches.HandleFunc("/{id}", rt.deleteSwitch).Methods("DELETE")

	connections := rt.PathPrefix("/sectionConnections").Subrouter()
	connections.HandleFunc("", rt.listConnections).Methods("GET")
	connections.HandleFunc("", rt.createConnection).Methods("POST")
	connections.HandleFunc("/{id}", rt.getConnection).Methods("GET")
	connections.HandleFunc("/{id}", rt.updateConnection).Methods("PUT")
	connections.HandleFunc("/{id}", rt.deleteConnection).Methods("DELETE")

	assets := rt.PathPrefix("/trainAssets").Subrouter()
	assets.HandleFunc("", rt.listTrainAssets).Methods("GET")
	assets.HandleFunc("", rt.createTrainAsset).Methods("POST")
	assets.HandleFunc("/{id}", rt.getTrainAsset).Methods("GET")
	assets.HandleFunc("/{id}", rt.updateTrainAsset).Methods("PUT")
	assets.HandleFunc("/{id}", rt.deleteTrainAsset).Methods("DELETE")

	events := rt.PathPrefix("/assetLocationEvents").Subrouter()
	events.HandleFunc("", rt.listLocationEvents).Methods("GET")
	events.HandleFunc("", rt.createLocationEvent).Methods("POST")
	events.HandleFunc("/{id}", rt.getLocationEvent).Methods("GET")
	events.HandleFunc("/{id}", rt.deleteLocationEvent).Methods("DELETE")

	rt.HandleFunc("/track-layout", rt.getTrackLayout).Methods("GET")

	logging := rt.PathPrefix("/logging").Subrouter()
	logging.HandleFunc("/submit", rt.submitLogs).Methods("POST")
	logging.HandleFunc("/health", rt.loggingHealth).Methods("GET")

	if hub != nil {
		rt.HandleFunc("/ws", hub.ServeWS)
	}

	return rt
}

// healthCheck returns the health status of the API
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// version returns build metadata baked in at compile time
func (rt *Router) version(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"commit":    buildinfo.CommitHash,
		"builtAt":   buildinfo.BuildTime,
		"startedAt": buildinfo.StartTime,
	})
}

// broadcast publishes a layout event when a hub is attached.
func (rt *Router) broadcast(event ws.Event) {
	if rt.hub != nil {
		rt.hub.Broadcast(event)
	}
}
