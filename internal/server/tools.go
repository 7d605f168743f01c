package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linnea-strand/wkt-spatial-tools/internal/model"
	"github.com/linnea-strand/wkt-spatial-tools/internal/observability"
	"github.com/linnea-strand/wkt-spatial-tools/internal/tools"
)

type paramDTO struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Default any      `json:"default,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Options []string `json:"options,omitempty"`
}

type toolDTO struct {
	ID          string     `json:"id"`
	Label       string     `json:"label"`
	Category    string     `json:"category"`
	Kinds       string     `json:"kinds"`
	Result      string     `json:"result"`
	MultiSelect bool       `json:"multi_select"`
	MinSelect   int        `json:"min_select,omitempty"`
	MaxSelect   int        `json:"max_select,omitempty"`
	Params      []paramDTO `json:"params,omitempty"`
}

func toToolDTO(t tools.Tool) toolDTO {
	dto := toolDTO{
		ID:          t.ID,
		Label:       t.Label,
		Category:    string(t.Category),
		Kinds:       t.KindsLabel(),
		Result:      string(t.Result),
		MultiSelect: t.Arity.MultiSelect,
		MinSelect:   t.Arity.Min,
		MaxSelect:   t.Arity.Max,
	}
	for _, p := range t.Params {
		dto.Params = append(dto.Params, paramDTO{
			Name:    p.Name,
			Type:    string(p.Type),
			Default: p.Default,
			Min:     p.Min,
			Max:     p.Max,
			Options: p.Options,
		})
	}
	return dto
}

func (s *Server) handleListTools(w http.ResponseWriter, _ *http.Request) {
	all := tools.All()
	out := make([]toolDTO, 0, len(all))
	for _, t := range all {
		out = append(out, toToolDTO(t))
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": out})
}

type availableRequest struct {
	Kinds []string `json:"kinds"`
}

// handleAvailable maps the kinds of the current selection to the applicable
// tools, grouped by category.
func (s *Server) handleAvailable(w http.ResponseWriter, r *http.Request) {
	var req availableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}

	selected := make([]model.Kind, 0, len(req.Kinds))
	for _, raw := range req.Kinds {
		k, ok := model.ParseKind(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown geometry kind: "+raw)
			return
		}
		selected = append(selected, k)
	}

	grouped := tools.Available(selected)
	out := map[string][]toolDTO{}
	for cat, ts := range grouped {
		dtos := make([]toolDTO, 0, len(ts))
		for _, t := range ts {
			dtos = append(dtos, toToolDTO(t))
		}
		out[string(cat)] = dtos
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

type formulaRequest struct {
	Refs   []string       `json:"refs"`
	Kinds  []string       `json:"kinds,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// handleFormula renders a tool's expression for the given geometry
// references. Kinds, when supplied, are checked against the tool's
// applicability the same way the catalog listing does.
func (s *Server) handleFormula(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	t := tools.ByID(id)
	if t == nil {
		observability.IncFormula(id, "unknown")
		writeError(w, http.StatusNotFound, "unknown tool: "+id)
		return
	}

	var req formulaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.IncFormula(id, "error")
		writeError(w, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if len(req.Refs) == 0 {
		observability.IncFormula(id, "error")
		writeError(w, http.StatusBadRequest, "refs is required")
		return
	}
	if !t.AcceptsCount(len(req.Refs)) {
		observability.IncFormula(id, "error")
		writeError(w, http.StatusBadRequest, "tool does not accept a selection of this size")
		return
	}
	if len(req.Kinds) > 0 {
		matched := false
		for _, raw := range req.Kinds {
			k, ok := model.ParseKind(raw)
			if !ok {
				observability.IncFormula(id, "error")
				writeError(w, http.StatusBadRequest, "unknown geometry kind: "+raw)
				return
			}
			if t.AcceptsKind(k) {
				matched = true
			}
		}
		if !matched {
			observability.IncFormula(id, "error")
			writeError(w, http.StatusBadRequest, "tool does not apply to the selected geometry kinds")
			return
		}
	}

	expr := t.Expression(req.Refs, tools.Params(req.Params))
	observability.IncFormula(id, "ok")
	writeJSON(w, http.StatusOK, map[string]string{
		"formula": expr,
		"result":  string(t.Result),
	})
}
