// Package model contains the fixed-schema records shared by the domain and
// adapter layers.
package model

import (
	"fmt"
	"math"
)

// Star is one target of the stellar catalog. Values are read-only after
// construction. Missing catalog values are NaN; selection removes stars
// lacking what the efficiency model needs.
type Star struct {
	KepID     int64
	Teff      float64 // effective temperature, K
	Radius    float64 // solar radii
	Mass      float64 // solar masses
	Dataspan  float64 // days
	Dutycycle float64 // fraction of dataspan with valid data

	// CDPP is the noise (ppm) as a function of transit duration (hours).
	CDPP Curve
	// MESThreshold is the detection threshold as a function of transit
	// duration (hours).
	MESThreshold Curve
}

// Validate checks that every present value is physically meaningful.
func (s Star) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"teff", s.Teff},
		{"radius", s.Radius},
		{"mass", s.Mass},
	}
	for _, p := range positive {
		if math.IsNaN(p.v) {
			continue
		}
		if p.v <= 0 || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: kepid %d: %s=%v", ErrInvalidStar, s.KepID, p.name, p.v)
		}
	}
	if !math.IsNaN(s.Dataspan) && (s.Dataspan < 0 || math.IsInf(s.Dataspan, 0)) {
		return fmt.Errorf("%w: kepid %d: dataspan=%v", ErrInvalidStar, s.KepID, s.Dataspan)
	}
	if !math.IsNaN(s.Dutycycle) && (s.Dutycycle < 0 || s.Dutycycle > 1) {
		return fmt.Errorf("%w: kepid %d: dutycycle=%v", ErrInvalidStar, s.KepID, s.Dutycycle)
	}
	if s.CDPP.Len() == 0 {
		return fmt.Errorf("%w: kepid %d: empty CDPP curve", ErrInvalidStar, s.KepID)
	}
	if s.MESThreshold.Len() == 0 {
		return fmt.Errorf("%w: kepid %d: empty MES threshold curve", ErrInvalidStar, s.KepID)
	}
	return nil
}

// Candidate is a transit-event record of the candidate catalog.
type Candidate struct {
	KepID       int64
	Name        string
	Disposition string
	Period      float64 // days
	PeriodErr1  float64
	PeriodErr2  float64
	Radius      float64 // Earth radii
	RadiusErr1  float64
	RadiusErr2  float64
}

// Detection is a candidate joined to its host star.
type Detection struct {
	Candidate
	Host Star
}
