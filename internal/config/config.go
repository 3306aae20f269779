// Package config defines process configuration and its layered loader.
package config

import (
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080". Empty disables
	// the reporting API.
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of grid workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the slab job queue.
	QueueSize int `koanf:"queue_size"`

	// Catalog source.
	ArchiveURL    string        `koanf:"archive_url"`
	StellarTable  string        `koanf:"stellar_table"`
	KOITable      string        `koanf:"koi_table"`
	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
	FetchAttempts int           `koanf:"fetch_attempts"`

	// CacheBackend is file, redis or none.
	CacheBackend string        `koanf:"cache_backend"`
	CacheDir     string        `koanf:"cache_dir"`
	RedisAddr    string        `koanf:"redis_addr"`
	RedisDB      int           `koanf:"redis_db"`
	RedisTTL     time.Duration `koanf:"redis_ttl"`

	// Grid axes.
	PeriodMin    float64 `koanf:"period_min"`
	PeriodMax    float64 `koanf:"period_max"`
	PeriodPoints int     `koanf:"period_points"`
	RadiusMin    float64 `koanf:"radius_min"`
	RadiusMax    float64 `koanf:"radius_max"`
	RadiusPoints int     `koanf:"radius_points"`
	StellarParam string  `koanf:"stellar_param"`
	ParamMin     float64 `koanf:"param_min"`
	ParamMax     float64 `koanf:"param_max"`
	ParamPoints  int     `koanf:"param_points"`
	LogSpacing   bool    `koanf:"log_spacing"`

	// Detection model.
	Eccentricity float64 `koanf:"eccentricity"`
	GammaShape   float64 `koanf:"gamma_shape"`
	GammaScale   float64 `koanf:"gamma_scale"`

	// Stellar cuts.
	TeffMin       float64 `koanf:"teff_min"`
	TeffMax       float64 `koanf:"teff_max"`
	StarRadiusMax float64 `koanf:"star_radius_max"`
	DataspanMin   float64 `koanf:"dataspan_min"`
	DutycycleMin  float64 `koanf:"dutycycle_min"`
	CDPPMax       float64 `koanf:"cdpp_max"`

	// Disposition is the candidate disposition kept by the selection.
	Disposition string `koanf:"disposition"`
}

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:      "info",
		WorkerCount:   runtime.NumCPU(),
		QueueSize:     1024,
		ArchiveURL:    "https://exoplanetarchive.ipac.caltech.edu/cgi-bin/nstedAPI/nph-nstedAPI",
		StellarTable:  "q1_q16_stellar",
		KOITable:      "q1_q16_koi",
		FetchTimeout:  2 * time.Minute,
		FetchAttempts: 3,
		CacheBackend:  CacheFile,
		CacheDir:      "data",
		RedisAddr:     "localhost:6379",
		RedisTTL:      7 * 24 * time.Hour,
		PeriodMin:     50,
		PeriodMax:     300,
		PeriodPoints:  57,
		RadiusMin:     0.75,
		RadiusMax:     2.5,
		RadiusPoints:  61,
		StellarParam:  "teff",
		ParamMin:      4200,
		ParamMax:      6100,
		ParamPoints:   20,
		GammaShape:    4.65,
		GammaScale:    0.98,
		TeffMin:       4200,
		TeffMax:       6100,
		StarRadiusMax: 1.15,
		DataspanMin:   365.25 * 2,
		DutycycleMin:  0.6,
		CDPPMax:       1000,
		Disposition:   "CANDIDATE",
	}
}
