package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ble-visibility-map/internal/device"
	"ble-visibility-map/internal/pipeline"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const Version = "1.0.0"

type ingester interface {
	Ingest(ctx context.Context, scan device.ScanInput) (pipeline.Result, error)
}

type repository interface {
	Get(ctx context.Context, address string) (device.Profile, error)
	List(ctx context.Context) ([]device.Profile, error)
	Observations(ctx context.Context, address string, limit int) ([]device.Observation, error)
	SetTag(ctx context.Context, address, displayName string, notifyOnSight bool) (device.Profile, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type API struct {
	Pipeline ingester
	Registry repository
	Store    pinger
}

type Config struct {
	Pipeline ingester
	Registry repository
	// Store is checked by /health when set.
	Store pinger
}

func New(cfg Config) *API {
	return &API{Pipeline: cfg.Pipeline, Registry: cfg.Registry, Store: cfg.Store}
}

func (a *API) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/", a.Root)
	r.Get("/health", a.Health)
	r.Post("/scans", a.SubmitScan)
	r.Post("/tags/{mac_address}", a.UpdateTag)
	r.Get("/devices", a.ListDevices)
	r.Get("/devices/{mac_address}", a.GetDevice)
	r.Get("/devices/{mac_address}/observations", a.ListObservations)
	return r
}

func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Message: "Welcome to the BLE Visibility Map API.",
		Version: Version,
	})
}

func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	if a.Store != nil {
		if err := a.Store.Ping(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "Health check failed", "error", err)
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (a *API) SubmitScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	ts, err := device.ParseTimestamp(req.Timestamp)
	if err != nil {
		http.Error(w, "invalid timestamp", http.StatusBadRequest)
		return
	}

	res, err := a.Pipeline.Ingest(r.Context(), device.ScanInput{
		Address:           req.MacAddress,
		SignalStrength:    req.RSSI,
		GatewayID:         req.GatewayID,
		AdvertisementData: req.AdvertisementData,
		Timestamp:         ts,
	})
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newDeviceResponse(res.Profile))
}

func (a *API) UpdateTag(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "mac_address")
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.FriendlyName == nil || req.AllowNotifications == nil {
		http.Error(w, "friendly_name and allow_notifications are required", http.StatusBadRequest)
		return
	}

	profile, err := a.Registry.SetTag(r.Context(), address, *req.FriendlyName, *req.AllowNotifications)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeviceResponse(profile))
}

func (a *API) GetDevice(w http.ResponseWriter, r *http.Request) {
	profile, err := a.Registry.Get(r.Context(), chi.URLParam(r, "mac_address"))
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, newDeviceResponse(profile))
}

func (a *API) ListDevices(w http.ResponseWriter, r *http.Request) {
	profiles, err := a.Registry.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	resp := ListDevicesResponse{Devices: make([]DeviceResponse, 0, len(profiles))}
	for _, p := range profiles {
		resp.Devices = append(resp.Devices, newDeviceResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) ListObservations(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "mac_address")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	if _, err := a.Registry.Get(r.Context(), address); err != nil {
		writeError(r.Context(), w, err)
		return
	}
	observations, err := a.Registry.Observations(r.Context(), address, limit)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	resp := ListObservationsResponse{Observations: make([]ObservationResponse, 0, len(observations))}
	for _, o := range observations {
		resp.Observations = append(resp.Observations, newObservationResponse(o))
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, device.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, device.ErrNotFound):
		http.Error(w, "device not found", http.StatusNotFound)
	default:
		slog.ErrorContext(ctx, "Request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.InfoContext(r.Context(), "HTTP request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.RequestURI,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
