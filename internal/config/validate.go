package config

import (
	"errors"
	"fmt"

	"github.com/okian/completeness/internal/domain/model"
)

// Validate reports every invalid setting, each wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.WorkerCount > 0, "worker_count must be positive, got %d", c.WorkerCount)
	check(c.QueueSize > 0, "queue_size must be positive, got %d", c.QueueSize)
	check(c.StellarTable != "" && c.KOITable != "", "table names must not be empty")
	check(c.FetchTimeout > 0, "fetch_timeout must be positive, got %s", c.FetchTimeout)
	check(c.FetchAttempts > 0, "fetch_attempts must be positive, got %d", c.FetchAttempts)

	switch c.CacheBackend {
	case CacheFile:
		check(c.CacheDir != "", "cache_dir must not be empty for the file cache")
	case CacheRedis:
		check(c.RedisAddr != "", "redis_addr must not be empty for the redis cache")
		check(c.RedisTTL >= 0, "redis_ttl must not be negative, got %s", c.RedisTTL)
	case CacheNone:
	default:
		check(false, "cache_backend must be file, redis or none, got %q", c.CacheBackend)
	}
	check(c.ArchiveURL != "", "archive_url must not be empty")

	axis := func(name string, lo, hi float64, n, min int) {
		check(lo < hi, "%s_min must be below %s_max, got %v >= %v", name, name, lo, hi)
		check(n >= min, "%s_points must be at least %d, got %d", name, min, n)
		if c.LogSpacing {
			check(lo > 0, "%s_min must be positive with log_spacing, got %v", name, lo)
		}
	}
	axis("period", c.PeriodMin, c.PeriodMax, c.PeriodPoints, 1)
	axis("radius", c.RadiusMin, c.RadiusMax, c.RadiusPoints, 1)
	axis("param", c.ParamMin, c.ParamMax, c.ParamPoints, 2)
	if _, err := model.ParseStellarParam(c.StellarParam); err != nil {
		errs = append(errs, fmt.Errorf("%w: stellar_param: %w", ErrInvalidConfig, err))
	}
	check(c.PeriodMin > 0, "period_min must be positive, got %v", c.PeriodMin)
	check(c.RadiusMin > 0, "radius_min must be positive, got %v", c.RadiusMin)

	check(c.Eccentricity >= 0 && c.Eccentricity < 1, "eccentricity must be in [0,1), got %v", c.Eccentricity)
	check(c.GammaShape > 0 && c.GammaScale > 0, "gamma_shape and gamma_scale must be positive")
	check(c.TeffMin <= c.TeffMax, "teff_min must not exceed teff_max")

	return errors.Join(errs...)
}
