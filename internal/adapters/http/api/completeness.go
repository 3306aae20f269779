package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/completeness/internal/domain/grid"
)

// CompletenessDependencies defines the projection lookup.
type CompletenessDependencies interface {
	Completeness(over []int, mean bool) (grid.Projection, error)
}

// CompletenessHandler handles completeness requests.
type CompletenessHandler struct {
	deps CompletenessDependencies
}

// NewCompletenessHandler creates a new completeness handler.
func NewCompletenessHandler(deps CompletenessDependencies) *CompletenessHandler {
	return &CompletenessHandler{deps: deps}
}

// HandleGetCompleteness handles GET /completeness?over=a[,b][&mean=true].
// Without over the full grid is returned.
func (h *CompletenessHandler) HandleGetCompleteness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	over, err := parseAxes(q.Get("over"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	mean := false
	if v := q.Get("mean"); v != "" {
		if mean, err = strconv.ParseBool(v); err != nil {
			writeServiceError(w, fmt.Errorf("%w: mean=%q", ErrBadRequest, v))
			return
		}
	}

	p, err := h.deps.Completeness(over, mean)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projectionResponse{
		Axes:   p.Axes,
		Shape:  p.Shape,
		Values: nullable(p.Values),
		Mean:   mean,
	})
}

type projectionResponse struct {
	Axes   []grid.Axis `json:"axes"`
	Shape  []int       `json:"shape"`
	Values nullable    `json:"values"`
	Mean   bool        `json:"mean"`
}

func parseAxes(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	axes := make([]int, 0, len(parts))
	for _, p := range parts {
		a, err := grid.ParseAxis(p)
		if err != nil {
			return nil, err
		}
		axes = append(axes, a)
	}
	return axes, nil
}
