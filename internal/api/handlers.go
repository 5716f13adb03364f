// Package api is the HTTP glue layer: load snapshot, invoke the agent
// or apply a mutation, save snapshot, return the updated snapshot. No
// reasoning logic lives here.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LohithR22/DoseWise/internal/agent"
	"github.com/LohithR22/DoseWise/internal/health"
	"github.com/LohithR22/DoseWise/internal/intelligence"
	"github.com/LohithR22/DoseWise/internal/medication"
	"github.com/LohithR22/DoseWise/internal/reorder"
	"github.com/LohithR22/DoseWise/internal/shared/auth"
	"github.com/LohithR22/DoseWise/internal/shared/errors"
	"github.com/LohithR22/DoseWise/internal/shared/events"
	"github.com/LohithR22/DoseWise/internal/store"
)

// DefaultPatientID is used when no authenticated patient is present
const DefaultPatientID = "default"

// DefaultInitialQuantity is stocked for each medication at setup
const DefaultInitialQuantity = 30

// Notifier delivers reminders, escalations and reorder notices
type Notifier interface {
	SendReminder(ctx context.Context, medication string) error
	SendEscalation(ctx context.Context, reason string) error
	SendReorderTrigger(ctx context.Context, medication string) error
	SendLowInventoryAlert(ctx context.Context, medication string, quantity, threshold int) error
}

// Handler provides the HTTP handlers for the assistant API
type Handler struct {
	store      store.Store
	runner     *agent.Runner
	notifier   Notifier
	reorders   *reorder.Agent
	summarizer *intelligence.Summarizer
	bus        *events.Bus

	// Serializes load-run-save per patient; concurrent cycles on the
	// same snapshot would lose updates.
	mu       sync.Mutex
	patients map[string]*sync.Mutex
}

// NewHandler creates the API handler. notifier, reorders, summarizer
// and bus may be nil; the matching side effects are then skipped.
func NewHandler(
	st store.Store,
	runner *agent.Runner,
	notifier Notifier,
	reorders *reorder.Agent,
	summarizer *intelligence.Summarizer,
	bus *events.Bus,
) *Handler {
	return &Handler{
		store:      st,
		runner:     runner,
		notifier:   notifier,
		reorders:   reorders,
		summarizer: summarizer,
		bus:        bus,
		patients:   make(map[string]*sync.Mutex),
	}
}

// Routes registers the API routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/state", h.GetState)
	r.Post("/agent/run", h.RunAgent)
	r.Post("/setup/medications", h.SetupMedications)
	r.Post("/dose/confirm", h.ConfirmDose)
	r.Post("/vitals/submit", h.SubmitVitals)
	r.Post("/wellbeing/submit", h.SubmitWellbeing)
	r.Get("/report/caregiver", h.CaregiverReport)
	r.Get("/reorders", h.ListReorders)

	// Frontend compatibility: older clients call these
	r.Get("/medications", h.GetMedications)
	r.Post("/setup", h.SetupMedications)
	r.Post("/medications/{medicationID}/confirm", h.ConfirmDoseByID)
	r.Post("/vitals", h.SubmitVitals)

	return r
}

// GetState returns the full snapshot
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	patientID := h.patientID(r)
	snap, err := h.store.Load(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// RunAgent executes one full cycle and returns the updated snapshot
func (h *Handler) RunAgent(w http.ResponseWriter, r *http.Request) {
	patientID := h.patientID(r)

	snap, err := h.runCycle(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SetupMedications replaces the medication list, stocks the inventory
// and records the patient profile
func (h *Handler) SetupMedications(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	patientID := h.patientID(r)
	lock := h.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := h.store.Load(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	registry := medication.NewRegistry()
	inventory := medication.NewInventoryManager(medication.DefaultLowStockThreshold, h.notifier)
	for _, item := range req.Medications {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		timings := []string{medication.DefaultTiming}
		if item.Time != "" {
			timings = []string{item.Time}
		}
		if _, err := registry.Add(name, item.Dosage, timings, medication.FoodAnytime); err != nil {
			continue
		}
		if _, err := inventory.Add(name, DefaultInitialQuantity, 0); err != nil {
			continue
		}
	}

	snap.Medications = registry.All()
	snap.Inventory = inventory.All()
	if req.Name != "" {
		snap.Profile.Name = req.Name
	}
	if req.Age != "" {
		snap.Profile.Age = req.Age
	}
	if req.Conditions != "" {
		snap.Profile.Conditions = req.Conditions
	}

	if err := h.store.Save(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ConfirmDose marks a dose taken, decrements inventory and runs a cycle
func (h *Handler) ConfirmDose(w http.ResponseWriter, r *http.Request) {
	var req DoseConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	h.confirmDose(w, r, req)
}

// ConfirmDoseByID is the legacy confirm route with the id in the path
func (h *Handler) ConfirmDoseByID(w http.ResponseWriter, r *http.Request) {
	var req DoseConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	req.MedicationID = chi.URLParam(r, "medicationID")
	h.confirmDose(w, r, req)
}

func (h *Handler) confirmDose(w http.ResponseWriter, r *http.Request, req DoseConfirmRequest) {
	patientID := h.patientID(r)
	lock := h.patientLock(patientID)
	lock.Lock()

	snap, err := h.store.Load(r.Context(), patientID)
	if err != nil {
		lock.Unlock()
		writeError(w, err)
		return
	}

	name := req.MedicationName
	if name == "" && req.MedicationID != "" {
		for _, med := range snap.Medications {
			if med.Name == req.MedicationID {
				name = med.Name
				break
			}
		}
		if name == "" {
			name = req.MedicationID
		}
	}
	if name == "" {
		lock.Unlock()
		writeError(w, errors.BadRequest("medication_name or medication_id required"))
		return
	}

	takenAt := time.Now()
	if req.Timestamp != nil {
		takenAt = *req.Timestamp
	}

	found := false
	for i := range snap.Medications {
		if snap.Medications[i].Name == name {
			medication.MarkDoseTaken(&snap.Medications[i], takenAt)
			found = true
			break
		}
	}
	if !found {
		lock.Unlock()
		writeError(w, errors.NotFound("medication", name))
		return
	}

	inventory := medication.HydrateInventory(snap.Inventory, h.notifier)
	if _, err := inventory.Decrement(r.Context(), name, 1); err != nil {
		// A confirmed dose stands even when stock tracking disagrees
		log.Printf("api: inventory decrement failed for %s: %v", name, err)
	}
	snap.Inventory = inventory.All()

	if err := h.store.Save(r.Context(), snap); err != nil {
		lock.Unlock()
		writeError(w, err)
		return
	}
	lock.Unlock()

	h.publish(events.NewEvent(events.TypeDoseConfirmed, patientID, map[string]any{
		"medication": name,
		"taken_at":   takenAt,
	}))

	updated, err := h.runCycle(r.Context(), patientID)
	if err != nil {
		// The confirmation is already saved; return it even when the
		// follow-up cycle fails.
		log.Printf("api: post-confirmation cycle failed: %v", err)
		writeJSON(w, http.StatusOK, snap)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// SubmitVitals appends vital readings to the snapshot
func (h *Handler) SubmitVitals(w http.ResponseWriter, r *http.Request) {
	var req VitalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	patientID := h.patientID(r)
	lock := h.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := h.store.Load(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	readings := req.Readings(time.Now())
	snap.Vitals = append(snap.Vitals, readings...)

	if err := h.store.Save(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}

	h.publish(events.NewEvent(events.TypeVitalsRecorded, patientID, map[string]any{
		"count": len(readings),
	}))
	writeJSON(w, http.StatusOK, snap)
}

// SubmitWellbeing appends a feeling report to the snapshot
func (h *Handler) SubmitWellbeing(w http.ResponseWriter, r *http.Request) {
	var req WellbeingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Feeling) == "" {
		writeError(w, errors.Validation("feeling is required", nil))
		return
	}

	patientID := h.patientID(r)
	lock := h.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := h.store.Load(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	recordedAt := time.Now()
	if req.RecordedAt != nil {
		recordedAt = *req.RecordedAt
	}
	snap.WellbeingLog = append(snap.WellbeingLog, health.WellbeingEntry{
		Feeling:    req.Feeling,
		RecordedAt: recordedAt,
	})

	if err := h.store.Save(r.Context(), snap); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// CaregiverReport returns a caregiver-facing summary of the current
// alerts enriched with historical analytics
func (h *Handler) CaregiverReport(w http.ResponseWriter, r *http.Request) {
	patientID := h.patientID(r)
	snap, err := h.store.Load(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	now := time.Now()
	historical := intelligence.BuildHistoricalContext(snap.Medications, snap.Vitals, snap.WellbeingLog, now)

	alerts := snap.Alerts
	if snap.Reasoning != nil {
		alerts = append(append([]string{}, alerts...), snap.Reasoning.TrendAlerts...)
	}

	var summary string
	switch {
	case h.summarizer != nil:
		summary = h.summarizer.GenerateCaregiverSummary(r.Context(), snap.Profile, alerts, historical)
	case len(alerts) == 0:
		summary = intelligence.NoAlertsSummary
	default:
		summary = intelligence.FallbackSummary(alerts, snap.Profile, historical)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"patient_id": patientID,
		"summary":    summary,
		"alerts":     alerts,
		"historical": historical,
	})
}

// ListReorders returns the refill requests recorded for the patient
func (h *Handler) ListReorders(w http.ResponseWriter, r *http.Request) {
	if h.reorders == nil {
		writeJSON(w, http.StatusOK, map[string]any{"requests": []reorder.Request{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requests": h.reorders.Requests(h.patientID(r)),
	})
}

// GetMedications returns just the medication list (frontend compatibility)
func (h *Handler) GetMedications(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.Load(r.Context(), h.patientID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"medications": snap.Medications})
}

// runCycle serializes load-run-save for the patient and dispatches the
// resulting plan out-of-band.
func (h *Handler) runCycle(ctx context.Context, patientID string) (agent.Snapshot, error) {
	lock := h.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	snap, err := h.store.Load(ctx, patientID)
	if err != nil {
		return agent.Snapshot{}, err
	}

	updated, err := h.runner.RunCycle(snap, time.Now())
	if err != nil {
		h.publish(events.NewEvent(events.TypeCycleFailed, patientID, map[string]any{
			"error": err.Error(),
		}))
		return agent.Snapshot{}, errors.Internal(err)
	}

	if err := h.store.Save(ctx, updated); err != nil {
		return agent.Snapshot{}, err
	}

	go h.dispatch(updated)
	return updated, nil
}

// dispatch delivers the cycle's side effects: notifications, reorders
// and audit events. Failures are logged, never surfaced; the cycle's
// classification and plan are already finalized and saved.
func (h *Handler) dispatch(snap agent.Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, entry := range snap.Plan {
		switch entry.Kind {
		case agent.ActionRemind:
			if h.notifier != nil {
				if err := h.notifier.SendReminder(ctx, entry.Target); err != nil {
					log.Printf("api: reminder failed for %s: %v", entry.Target, err)
				}
			}
		case agent.ActionEscalate:
			if h.notifier != nil {
				if err := h.notifier.SendEscalation(ctx, entry.Target); err != nil {
					log.Printf("api: escalation failed for %s: %v", entry.Target, err)
				}
			}
			h.publish(events.NewEvent(events.TypeEscalationRaised, snap.PatientID, map[string]any{
				"reason": entry.Target,
			}))
		case agent.ActionReorder:
			if h.reorders != nil {
				req, err := h.reorders.RequestRefill(ctx, snap.PatientID, entry.Target, 0)
				if err != nil {
					log.Printf("api: reorder failed for %s: %v", entry.Target, err)
					continue
				}
				h.publish(events.NewEvent(events.TypeReorderRequested, snap.PatientID, map[string]any{
					"request_id": req.ID,
					"medication": req.Medication,
				}))
			}
			if h.notifier != nil {
				if err := h.notifier.SendReorderTrigger(ctx, entry.Target); err != nil {
					log.Printf("api: reorder notice failed for %s: %v", entry.Target, err)
				}
			}
		}
	}

	problem := ""
	if snap.Reasoning != nil {
		problem = string(snap.Reasoning.Problem)
	}
	h.publish(events.NewEvent(events.TypeCycleCompleted, snap.PatientID, map[string]any{
		"problem":      problem,
		"plan_entries": len(snap.Plan),
	}))
}

func (h *Handler) publish(event events.Event) {
	if h.bus == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.bus.Publish(ctx, event); err != nil {
		log.Printf("api: event publish failed (%s): %v", event.Type, err)
	}
}

func (h *Handler) patientID(r *http.Request) string {
	if user, ok := auth.FromContext(r.Context()); ok && user.PatientID != "" {
		return user.PatientID
	}
	return DefaultPatientID
}

func (h *Handler) patientLock(patientID string) *sync.Mutex {
	h.mu.Lock()
	defer h.mu.Unlock()
	lock, ok := h.patients[patientID]
	if !ok {
		lock = &sync.Mutex{}
		h.patients[patientID] = lock
	}
	return lock
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
