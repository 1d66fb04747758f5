package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"flightplan-service/internal/domain/entity"
	"flightplan-service/internal/domain/repository"
	"flightplan-service/pkg/logger"
)

const maxBodyBytes = 1 << 20

// FlightPlanHandler serves the flight plan routes on top of a FlightPlanStore.
type FlightPlanHandler struct {
	store  repository.FlightPlanStore
	logger logger.Logger
}

func NewFlightPlanHandler(store repository.FlightPlanStore, log logger.Logger) *FlightPlanHandler {
	return &FlightPlanHandler{store: store, logger: log}
}

type fileFlightPlanResponse struct {
	FlightPlanID string `json:"flight_plan_id"`
}

type departureAirportResponse struct {
	FlightPlanID     string `json:"flight_plan_id"`
	DepartureAirport string `json:"departing_airport"`
}

type routeResponse struct {
	FlightPlanID string `json:"flight_plan_id"`
	Route        string `json:"route"`
}

type timeEnrouteResponse struct {
	FlightPlanID string  `json:"flight_plan_id"`
	TimeEnroute  string  `json:"time_enroute"`
	Minutes      float64 `json:"minutes"`
}

// Routes mounts the handler under the current router.
func (h *FlightPlanHandler) Routes(r chi.Router) {
	r.Get("/flightplan", h.List)
	r.Put("/flightplan", h.Update)
	r.Post("/flightplan/file", h.File)
	r.Get("/flightplan/{flightPlanID}", h.Get)
	r.Delete("/flightplan/{flightPlanID}", h.Delete)
	r.Get("/flightplan/airport/departure/{flightPlanID}", h.DepartureAirport)
	r.Get("/flightplan/route/{flightPlanID}", h.Route)
	r.Get("/flightplan/time/enroute/{flightPlanID}", h.TimeEnroute)
}

func (h *FlightPlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.GetAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list flight plans", "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to list flight plans")
		return
	}
	if len(plans) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *FlightPlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (h *FlightPlanHandler) File(w http.ResponseWriter, r *http.Request) {
	var plan entity.FlightPlan
	if !decodeBody(w, r, &plan) {
		return
	}

	id, outcome := h.store.FileFlightPlan(r.Context(), plan)
	switch outcome {
	case entity.Success:
		writeJSON(w, http.StatusOK, fileFlightPlanResponse{FlightPlanID: id})
	case entity.BadRequest:
		writeError(w, r, http.StatusBadRequest, "flight plan rejected")
	default:
		h.logger.Error("Failed to file flight plan", "outcome", outcome.String())
		writeError(w, r, http.StatusInternalServerError, "failed to file flight plan")
	}
}

func (h *FlightPlanHandler) Update(w http.ResponseWriter, r *http.Request) {
	var plan entity.FlightPlan
	if !decodeBody(w, r, &plan) {
		return
	}

	outcome := h.store.UpdateByID(r.Context(), plan.ID, plan)
	switch outcome {
	case entity.Success:
		writeJSON(w, http.StatusOK, fileFlightPlanResponse{FlightPlanID: plan.ID})
	case entity.NotFound:
		writeError(w, r, http.StatusNotFound, "flight plan not found")
	case entity.BadRequest:
		writeError(w, r, http.StatusBadRequest, "flight plan rejected")
	default:
		h.logger.Error("Failed to update flight plan", "flight_plan_id", plan.ID, "outcome", outcome.String())
		writeError(w, r, http.StatusInternalServerError, "failed to update flight plan")
	}
}

func (h *FlightPlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "flightPlanID")

	deleted, err := h.store.DeleteByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete flight plan", "flight_plan_id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to delete flight plan")
		return
	}
	if !deleted {
		writeError(w, r, http.StatusNotFound, "flight plan not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FlightPlanHandler) DepartureAirport(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, departureAirportResponse{
		FlightPlanID:     plan.ID,
		DepartureAirport: plan.DepartureAirport,
	})
}

func (h *FlightPlanHandler) Route(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{FlightPlanID: plan.ID, Route: plan.Route})
}

func (h *FlightPlanHandler) TimeEnroute(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.lookup(w, r)
	if !ok {
		return
	}
	enroute := plan.TimeEnroute()
	writeJSON(w, http.StatusOK, timeEnrouteResponse{
		FlightPlanID: plan.ID,
		TimeEnroute:  enroute.String(),
		Minutes:      enroute.Minutes(),
	})
}

// lookup loads the plan named by the URL and writes the 404 or 500 itself
// when it cannot.
func (h *FlightPlanHandler) lookup(w http.ResponseWriter, r *http.Request) (entity.FlightPlan, bool) {
	id := chi.URLParam(r, "flightPlanID")

	plan, found, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to read flight plan", "flight_plan_id", id, "error", err)
		writeError(w, r, http.StatusInternalServerError, "failed to read flight plan")
		return entity.FlightPlan{}, false
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "flight plan not found")
		return entity.FlightPlan{}, false
	}
	return plan, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
