package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plantworks/configurizer-core/internal/audit"
	"github.com/plantworks/configurizer-core/internal/machine"
	"github.com/plantworks/configurizer-core/internal/settings"
)

// settingResponse is the wire shape of one setting definition.
type settingResponse struct {
	Namespace    string          `json:"namespace,omitempty"`
	Identifier   string          `json:"identifier"`
	Description  string          `json:"description,omitempty"`
	Type         settings.Kind   `json:"type"`
	Nullable     bool            `json:"nullable"`
	DefaultValue *settings.Value `json:"defaultValue,omitempty"`
	UOM          settings.Unit   `json:"uom,omitempty"`
	MinValue     *float64        `json:"minValue,omitempty"`
	MaxValue     *float64        `json:"maxValue,omitempty"`
}

// proposedSetting is one entry of an apply request. The value may be any
// JSON primitive or null; objects and arrays fail decoding and the
// request is rejected before validation.
type proposedSetting struct {
	Identifier string         `json:"identifier"`
	Value      settings.Value `json:"value"`
	UOM        string         `json:"uom,omitempty"`
}

// applySettingsRequest is the body of POST /machines/{name}/settings.
type applySettingsRequest struct {
	Settings []proposedSetting `json:"settings"`
}

// validationFailureResponse reports a rejected settings batch.
type validationFailureResponse struct {
	Status  int              `json:"status"`
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Errors  []settings.Error `json:"errors"`
}

// handleListMachines returns all registered machines.
func (s *Server) handleListMachines(w http.ResponseWriter, _ *http.Request) {
	machines := s.registry.List()
	writeJSON(w, http.StatusOK, map[string]any{
		"machines": machines,
		"count":    len(machines),
	})
}

// handleGetSettings returns the setting definitions of a machine.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	m, err := s.registry.Get(name)
	if err != nil {
		writeNotFound(w, fmt.Sprintf("machine %q not found", name))
		return
	}

	schema := m.Schema()
	defs := make([]settingResponse, 0, len(schema))
	for _, def := range schema {
		resp := settingResponse{
			Namespace:   def.Namespace,
			Identifier:  def.Identifier,
			Description: def.Description,
			Type:        def.Kind,
			Nullable:    def.Nullable,
			UOM:         def.Unit,
			MinValue:    def.MinValue,
			MaxValue:    def.MaxValue,
		}
		if !def.Default.IsAbsent() {
			v := def.Default
			resp.DefaultValue = &v
		}
		defs = append(defs, resp)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"machine":  name,
		"settings": defs,
	})
}

// handleApplySettings validates and applies a settings batch to a machine.
//
// Malformed units and non-primitive values are rejected here, before the
// validation engine runs; the engine only ever receives parsed batches.
func (s *Server) handleApplySettings(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var req applySettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body: "+err.Error())
		return
	}

	batch := make([]settings.Proposed, 0, len(req.Settings))
	for _, entry := range req.Settings {
		proposed := settings.Proposed{
			Identifier: entry.Identifier,
			Value:      entry.Value,
		}
		if entry.UOM != "" {
			unit, err := settings.ParseUnit(entry.UOM)
			if err != nil {
				writeBadRequest(w, fmt.Sprintf("invalid unit of measure: %q", entry.UOM))
				return
			}
			proposed.Unit = unit
		}
		batch = append(batch, proposed)
	}

	start := time.Now()
	validationErrs, err := s.registry.Apply(r.Context(), name, batch)
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, machine.ErrNotFound) {
			writeNotFound(w, fmt.Sprintf("machine %q not found", name))
			return
		}
		s.logger.Error("applying settings", "machine", name, "error", err)
		writeInternalError(w, "failed to apply settings")
		return
	}

	s.recordApply(r, name, req.Settings, len(validationErrs), duration)

	if len(validationErrs) > 0 {
		writeJSON(w, http.StatusBadRequest, validationFailureResponse{
			Status:  http.StatusBadRequest,
			Code:    ErrCodeValidation,
			Message: "settings validation failed",
			Errors:  validationErrs,
		})
		return
	}

	s.publishApplied(name, req.Settings)

	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("settings applied to machine %q", name),
		"machine": name,
	})
}

// handleApplyHistory returns recent apply attempts for a machine.
func (s *Server) handleApplyHistory(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if _, err := s.registry.Get(name); err != nil {
		writeNotFound(w, fmt.Sprintf("machine %q not found", name))
		return
	}
	if s.audit == nil {
		writeJSON(w, http.StatusOK, map[string]any{"machine": name, "history": []audit.ApplyLog{}})
		return
	}

	filter := audit.Filter{Machine: name}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			filter.Offset = offset
		}
	}

	logs, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing apply history", "machine", name, "error", err)
		writeInternalError(w, "failed to list apply history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"machine": name,
		"history": logs,
	})
}

// recordApply writes the audit entry and apply metric for one attempt.
// Both are best-effort: failures are logged, never surfaced to the caller.
func (s *Server) recordApply(r *http.Request, name string, submitted []proposedSetting, errorCount int, duration time.Duration) {
	accepted := errorCount == 0

	if s.audit != nil {
		batchJSON, err := json.Marshal(submitted)
		if err != nil {
			batchJSON = []byte("[]")
		}
		entry := &audit.ApplyLog{
			Machine:    name,
			Accepted:   accepted,
			ErrorCount: errorCount,
			Batch:      string(batchJSON),
		}
		if err := s.audit.Create(r.Context(), entry); err != nil {
			s.logger.Error("recording apply audit entry", "machine", name, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.WriteApplyResult(name, accepted, errorCount, duration)
	}
}

// publishApplied announces an accepted batch on the machine's MQTT topic.
func (s *Server) publishApplied(name string, submitted []proposedSetting) {
	if s.mqtt == nil {
		return
	}

	payload, err := json.Marshal(map[string]any{
		"machine":    name,
		"settings":   submitted,
		"applied_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}

	topic := s.topics.SettingsApplied(name)
	if err := s.mqtt.Publish(topic, payload, true); err != nil {
		s.logger.Warn("publishing applied-settings event", "machine", name, "error", err)
	}
}
