package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/internal/domain/query"
)

// Query parameter names.
const (
	paramField     = "field"
	paramStartDate = "start_date"
	paramEndDate   = "end_date"
)

// timestampLayout is RFC 3339 with fixed milliseconds; UTC renders as "Z".
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MeasurementsHandler serves the range and metrics queries.
type MeasurementsHandler struct {
	deps Dependencies
}

// NewMeasurementsHandler creates a new measurements handler.
func NewMeasurementsHandler(deps Dependencies) *MeasurementsHandler {
	return &MeasurementsHandler{deps: deps}
}

// seriesItem renders as {"timestamp": "...", "<field>": value}.
type seriesItem struct {
	field string
	point model.Point
}

func (i seriesItem) MarshalJSON() ([]byte, error) {
	ts, err := json.Marshal(formatTimestamp(i.point.Timestamp))
	if err != nil {
		return nil, err
	}
	key, err := json.Marshal(i.field)
	if err != nil {
		return nil, err
	}
	val, err := json.Marshal(i.point.Value)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString(`{"timestamp":`)
	b.Write(ts)
	b.WriteByte(',')
	b.Write(key)
	b.WriteByte(':')
	b.Write(val)
	b.WriteByte('}')
	return b.Bytes(), nil
}

type metricsResponse struct {
	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stdDev"`
}

// HandleSeries handles GET /measurements?field=&start_date=&end_date=.
func (h *MeasurementsHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q, err := query.ParseSeries(params.Get(paramField), params.Get(paramStartDate), params.Get(paramEndDate))
	if err != nil {
		respondError(w, r, err)
		return
	}

	points, err := h.deps.Series(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	items := make([]seriesItem, len(points))
	for i, p := range points {
		items[i] = seriesItem{field: q.Field.String(), point: p}
	}
	writeJSON(w, http.StatusOK, items)
}

// HandleMetrics handles GET /measurements/metrics?field=[&start_date=&end_date=].
func (h *MeasurementsHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q, err := query.ParseMetrics(params.Get(paramField), params.Get(paramStartDate), params.Get(paramEndDate))
	if err != nil {
		respondError(w, r, err)
		return
	}

	sum, err := h.deps.Metrics(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, metricsResponse{
		Avg:    sum.Avg,
		Min:    sum.Min,
		Max:    sum.Max,
		StdDev: sum.StdDev,
	})
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
