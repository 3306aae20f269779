// Package selection applies the stellar and candidate cuts that define the
// sample entering the completeness model.
package selection

import (
	"math"

	"github.com/okian/completeness/internal/domain/model"
)

// ReferenceDuration is the transit duration (hours) at which the CDPP cut
// is applied.
const ReferenceDuration = 7.5

// StellarCuts keeps well-observed stars inside a temperature and size
// window. A NaN value fails every cut it is tested against.
type StellarCuts struct {
	TeffMin      float64
	TeffMax      float64
	RadiusMax    float64
	DataspanMin  float64 // exclusive
	DutycycleMin float64 // exclusive
	CDPPMax      float64 // ppm at ReferenceDuration
}

// DefaultStellarCuts selects G and K dwarfs with more than two years of
// data, a duty cycle above 0.6 and CDPP(7.5h) of at most 1000 ppm.
func DefaultStellarCuts() StellarCuts {
	return StellarCuts{
		TeffMin:      4200,
		TeffMax:      6100,
		RadiusMax:    1.15,
		DataspanMin:  365.25 * 2,
		DutycycleMin: 0.6,
		CDPPMax:      1000,
	}
}

// Keep reports whether s passes every cut and has a finite mass.
func (c StellarCuts) Keep(s model.Star) bool {
	return c.TeffMin <= s.Teff && s.Teff <= c.TeffMax &&
		s.Radius <= c.RadiusMax &&
		s.Dataspan > c.DataspanMin &&
		s.Dutycycle > c.DutycycleMin &&
		s.CDPP.At(ReferenceDuration) <= c.CDPPMax &&
		!math.IsNaN(s.Mass) && !math.IsInf(s.Mass, 0)
}

// Stars returns the stars passing the cuts, in input order.
func (c StellarCuts) Stars(stars []model.Star) []model.Star {
	out := make([]model.Star, 0, len(stars))
	for _, s := range stars {
		if c.Keep(s) {
			out = append(out, s)
		}
	}
	return out
}

// CandidateCuts keeps candidates of one disposition inside the period and
// radius ranges of the grid. Ranges are inclusive.
type CandidateCuts struct {
	Disposition string
	PeriodMin   float64
	PeriodMax   float64
	RadiusMin   float64
	RadiusMax   float64
}

// DefaultDisposition is the candidate disposition kept by default.
const DefaultDisposition = "CANDIDATE"

// Keep reports whether c passes the disposition and range cuts.
func (cc CandidateCuts) Keep(c model.Candidate) bool {
	return cc.dispositioned(c) && cc.inRange(c)
}

func (cc CandidateCuts) dispositioned(c model.Candidate) bool {
	return c.Disposition == cc.Disposition
}

func (cc CandidateCuts) inRange(c model.Candidate) bool {
	return cc.PeriodMin <= c.Period && c.Period <= cc.PeriodMax &&
		cc.RadiusMin <= c.Radius && c.Radius <= cc.RadiusMax
}

// Report counts what survived each stage of Candidates.
type Report struct {
	Joined         int `json:"joined"`
	Dispositioned  int `json:"dispositioned"`
	Selected       int `json:"selected"`
	UnknownHostIDs int `json:"unknown_host_ids"`
}

// Candidates joins candidates to stars on KepID (inner join) and applies
// the cuts. Output follows candidate order.
func (cc CandidateCuts) Candidates(cands []model.Candidate, stars []model.Star) ([]model.Detection, Report) {
	hosts := make(map[int64]model.Star, len(stars))
	for _, s := range stars {
		hosts[s.KepID] = s
	}

	var (
		rep  Report
		dets []model.Detection
	)
	for _, c := range cands {
		host, ok := hosts[c.KepID]
		if !ok {
			rep.UnknownHostIDs++
			continue
		}
		rep.Joined++
		if !cc.dispositioned(c) {
			continue
		}
		rep.Dispositioned++
		if !cc.inRange(c) {
			continue
		}
		dets = append(dets, model.Detection{Candidate: c, Host: host})
	}
	rep.Selected = len(dets)
	return dets, rep
}
