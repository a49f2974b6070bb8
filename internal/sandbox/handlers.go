// ABOUTME: Schema-driven HTTP handlers for sandbox resource CRUD and verbs.
// ABOUTME: Validates required fields, reports 404s, and returns JSON records.

package sandbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/2389/nv/internal/httperr"
	"github.com/2389/nv/internal/schema"
)

const defaultListLimit = 50

type resourceHandlers struct {
	store    *Store
	resource *schema.ResourceDescriptor
}

func (h *resourceHandlers) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := defaultListLimit
	if raw := query.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httperr.Write(w, r, http.StatusBadRequest, httperr.CodeInvalidRequest,
				fmt.Sprintf("limit must be a non-negative integer, got %q", raw))
			return
		}
		limit = parsed
	}

	offset := 0
	if raw := query.Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			httperr.Write(w, r, http.StatusBadRequest, httperr.CodeInvalidRequest,
				fmt.Sprintf("offset must be a non-negative integer, got %q", raw))
			return
		}
		offset = parsed
	}

	// Any query parameter naming a schema field is an equality filter.
	filters := map[string]string{}
	for _, field := range h.resource.Fields {
		if value := query.Get(field.Name); value != "" {
			filters[field.Name] = value
		}
	}

	records, err := h.store.List(h.resource.PluralName, limit, offset, filters)
	if err != nil {
		httperr.Write(w, r, http.StatusInternalServerError, httperr.CodeInternal, "failed to list records")
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *resourceHandlers) create(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httperr.Write(w, r, http.StatusBadRequest, httperr.CodeInvalidBody, "invalid request body")
		return
	}

	var details []httperr.FieldDetail
	for _, field := range h.resource.RequiredFields() {
		if value, present := body[field.Name]; !present || value == "" {
			details = append(details, httperr.FieldDetail{
				Field:   field.Name,
				Message: "is required",
			})
		}
	}
	for _, field := range h.resource.Fields {
		if !field.IsEnum() {
			continue
		}
		value, present := body[field.Name]
		if !present {
			continue
		}
		if s, isString := value.(string); !isString || !containsString(field.EnumValues, s) {
			details = append(details, httperr.FieldDetail{
				Field:   field.Name,
				Message: fmt.Sprintf("must be one of: %v", field.EnumValues),
			})
		}
	}
	if len(details) > 0 {
		httperr.WriteDetails(w, r, "validation failed", details)
		return
	}

	record, err := h.store.Insert(h.resource.PluralName, body)
	if err != nil {
		httperr.Write(w, r, http.StatusInternalServerError, httperr.CodeInternal, "failed to create record")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *resourceHandlers) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	record, err := h.store.Get(h.resource.PluralName, id)
	if err != nil {
		h.writeStoreError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *resourceHandlers) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var partial map[string]any
	if err := json.NewDecoder(r.Body).Decode(&partial); err != nil {
		httperr.Write(w, r, http.StatusBadRequest, httperr.CodeInvalidBody, "invalid request body")
		return
	}

	record, err := h.store.Update(h.resource.PluralName, id, partial)
	if err != nil {
		h.writeStoreError(w, r, err, id)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *resourceHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(h.resource.PluralName, id); err != nil {
		h.writeStoreError(w, r, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// verb returns a handler that merges the verb's body into the record and
// stamps the action name, so the CLI sees the effect of a custom action.
func (h *resourceHandlers) verb(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		partial := map[string]any{}
		if r.Body != nil {
			// An empty or absent body is fine for verbs.
			_ = json.NewDecoder(r.Body).Decode(&partial)
		}
		partial["lastAction"] = name

		record, err := h.store.Update(h.resource.PluralName, id, partial)
		if err != nil {
			h.writeStoreError(w, r, err, id)
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (h *resourceHandlers) writeStoreError(w http.ResponseWriter, r *http.Request, err error, id string) {
	if errors.Is(err, ErrNotFound) {
		httperr.Write(w, r, http.StatusNotFound, httperr.CodeNotFound,
			fmt.Sprintf("%s %q not found", h.resource.CommandName, id))
		return
	}
	httperr.Write(w, r, http.StatusInternalServerError, httperr.CodeInternal, "storage error")
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
