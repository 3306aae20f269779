package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/completeness/internal/domain/model"
)

// Durations (hours) at which the stellar table reports CDPP and MES
// thresholds.
var Durations = []float64{1.5, 2.0, 2.5, 3.0, 3.5, 4.5, 5.0, 6.0, 7.5, 9.0, 10.5, 12.0, 12.5, 15.0}

// Stellar table columns.
const (
	ColKepID     = "kepid"
	ColTeff      = "teff"
	ColRadius    = "radius"
	ColMass      = "mass"
	ColDataspan  = "dataspan"
	ColDutycycle = "dutycycle"
)

// Candidate table columns.
const (
	ColKOIName     = "kepoi_name"
	ColDisposition = "koi_pdisposition"
	ColPeriod      = "koi_period"
	ColPeriodErr1  = "koi_period_err1"
	ColPeriodErr2  = "koi_period_err2"
	ColPRad        = "koi_prad"
	ColPRadErr1    = "koi_prad_err1"
	ColPRadErr2    = "koi_prad_err2"
)

// DurationColumn returns the column name for prefix at duration hours, e.g.
// rrmscdpp07p5 for 7.5.
func DurationColumn(prefix string, hours float64) string {
	return prefix + strings.Replace(fmt.Sprintf("%04.1f", hours), ".", "p", 1)
}

// CDPPColumns returns the CDPP column names in Durations order.
func CDPPColumns() []string { return durationColumns("rrmscdpp") }

// MESThresholdColumns returns the MES threshold column names in Durations
// order.
func MESThresholdColumns() []string { return durationColumns("mesthres") }

func durationColumns(prefix string) []string {
	cols := make([]string, len(Durations))
	for i, d := range Durations {
		cols[i] = DurationColumn(prefix, d)
	}
	return cols
}

// DecodeReport counts decoded and rejected rows.
type DecodeReport struct {
	Rows    int `json:"rows"`
	Decoded int `json:"decoded"`
	Invalid int `json:"invalid"`
}

// columns resolves names to indices. Missing required columns fail with
// ErrSchema; missing optional ones map to -1.
type columns map[string]int

func resolve(t Table, required, optional []string) (columns, error) {
	cols := make(columns, len(required)+len(optional))
	var missing []string
	for _, name := range required {
		i := t.Column(name)
		if i < 0 {
			missing = append(missing, name)
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s lacks %s", ErrSchema, t.Name, strings.Join(missing, ", "))
	}
	for _, name := range optional {
		cols[name] = t.Column(name)
	}
	return cols, nil
}

func (c columns) str(rec []string, name string) string {
	i := c[name]
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// float returns NaN for empty or unparsable cells.
func (c columns) float(rec []string, name string) float64 {
	s := c.str(rec, name)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func (c columns) id(rec []string) (int64, error) {
	return strconv.ParseInt(c.str(rec, ColKepID), 10, 64)
}

// DecodeStars converts a stellar table into Stars. Empty cells become NaN.
// Rows with an unparsable kepid or physically invalid values are counted
// as invalid and dropped.
func DecodeStars(t Table) ([]model.Star, DecodeReport, error) {
	cdppCols, mesCols := CDPPColumns(), MESThresholdColumns()
	required := append([]string{ColKepID, ColTeff, ColRadius, ColMass, ColDataspan, ColDutycycle}, cdppCols...)
	required = append(required, mesCols...)
	cols, err := resolve(t, required, nil)
	if err != nil {
		return nil, DecodeReport{}, err
	}

	rep := DecodeReport{Rows: t.Len()}
	stars := make([]model.Star, 0, t.Len())
	noise := make([]float64, len(Durations))
	thresh := make([]float64, len(Durations))
	for _, rec := range t.Records {
		id, err := cols.id(rec)
		if err != nil {
			rep.Invalid++
			continue
		}
		for i := range Durations {
			noise[i] = cols.float(rec, cdppCols[i])
			thresh[i] = cols.float(rec, mesCols[i])
		}
		cdpp, err := model.NewCurve(Durations, noise)
		if err != nil {
			return nil, rep, err
		}
		mest, err := model.NewCurve(Durations, thresh)
		if err != nil {
			return nil, rep, err
		}

		s := model.Star{
			KepID:        id,
			Teff:         cols.float(rec, ColTeff),
			Radius:       cols.float(rec, ColRadius),
			Mass:         cols.float(rec, ColMass),
			Dataspan:     cols.float(rec, ColDataspan),
			Dutycycle:    cols.float(rec, ColDutycycle),
			CDPP:         cdpp,
			MESThreshold: mest,
		}
		if s.Validate() != nil {
			rep.Invalid++
			continue
		}
		stars = append(stars, s)
	}
	rep.Decoded = len(stars)
	return stars, rep, nil
}

// DecodeCandidates converts a candidate table into Candidates.
func DecodeCandidates(t Table) ([]model.Candidate, DecodeReport, error) {
	cols, err := resolve(t,
		[]string{ColKepID, ColDisposition, ColPeriod, ColPRad},
		[]string{ColKOIName, ColPeriodErr1, ColPeriodErr2, ColPRadErr1, ColPRadErr2},
	)
	if err != nil {
		return nil, DecodeReport{}, err
	}

	rep := DecodeReport{Rows: t.Len()}
	cands := make([]model.Candidate, 0, t.Len())
	for _, rec := range t.Records {
		id, err := cols.id(rec)
		if err != nil {
			rep.Invalid++
			continue
		}
		cands = append(cands, model.Candidate{
			KepID:       id,
			Name:        cols.str(rec, ColKOIName),
			Disposition: cols.str(rec, ColDisposition),
			Period:      cols.float(rec, ColPeriod),
			PeriodErr1:  cols.float(rec, ColPeriodErr1),
			PeriodErr2:  cols.float(rec, ColPeriodErr2),
			Radius:      cols.float(rec, ColPRad),
			RadiusErr1:  cols.float(rec, ColPRadErr1),
			RadiusErr2:  cols.float(rec, ColPRadErr2),
		})
	}
	rep.Decoded = len(cands)
	return cands, rep, nil
}
