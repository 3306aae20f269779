package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/okian/completeness/internal/domain/grid"
	"github.com/okian/completeness/internal/domain/occurrence"
)

// OccurrenceDependencies defines the occurrence-rate lookup.
type OccurrenceDependencies interface {
	Occurrence(axis int) (occurrence.Result, error)
}

// OccurrenceHandler handles occurrence-rate requests.
type OccurrenceHandler struct {
	deps OccurrenceDependencies
}

// NewOccurrenceHandler creates a new occurrence handler.
func NewOccurrenceHandler(deps OccurrenceDependencies) *OccurrenceHandler {
	return &OccurrenceHandler{deps: deps}
}

// HandleGetOccurrence handles GET /occurrence?axis=period|radius|param.
func (h *OccurrenceHandler) HandleGetOccurrence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	name := r.URL.Query().Get("axis")
	if name == "" {
		writeServiceError(w, fmt.Errorf("%w: missing axis", ErrBadRequest))
		return
	}
	axis, err := grid.ParseAxis(name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := h.deps.Occurrence(axis)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, occurrenceResponse{
		Axis:         res.Axis,
		Edges:        res.Edges,
		Counts:       res.Counts,
		Completeness: nullable(res.Completeness),
		Rates:        nullable(res.Rates),
		Total:        res.Total,
	})
}

type occurrenceResponse struct {
	Axis         string    `json:"axis"`
	Edges        []float64 `json:"edges"`
	Counts       []float64 `json:"counts"`
	Completeness nullable  `json:"completeness"`
	Rates        nullable  `json:"rates"`
	Total        float64   `json:"total"`
}

// nullable encodes NaN and infinities as null, which encoding/json rejects
// otherwise.
type nullable []float64

// MarshalJSON implements json.Marshaler.
func (n nullable) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	b := make([]byte, 0, 2+len(n)*8)
	b = append(b, '[')
	for i, v := range n {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, v, 'g', -1, 64)
	}
	return append(b, ']'), nil
}
