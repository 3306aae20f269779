package model

import (
	"fmt"
	"strings"
)

// StellarParam names the stellar property used as the third grid axis.
type StellarParam string

// Supported stellar parameters.
const (
	ParamTeff   StellarParam = "teff"
	ParamRadius StellarParam = "radius"
	ParamMass   StellarParam = "mass"
)

// ParseStellarParam accepts teff, radius or mass (case-insensitive).
func ParseStellarParam(s string) (StellarParam, error) {
	switch p := StellarParam(strings.ToLower(strings.TrimSpace(s))); p {
	case ParamTeff, ParamRadius, ParamMass:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownParam, s)
}

// Of returns the parameter's value for star.
func (p StellarParam) Of(star Star) float64 {
	switch p {
	case ParamRadius:
		return star.Radius
	case ParamMass:
		return star.Mass
	default:
		return star.Teff
	}
}
