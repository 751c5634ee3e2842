package motionsvd

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// SeriesOption configures a MotionSVDSeries in NewMotionSVDSeries.
type SeriesOption func(*MotionSVDSeries) error

// WithRate samples the series at a fixed rate in Hz, starting at 0 seconds
// unless WithStartingTime is given. It cannot be combined with WithTimestamps.
func WithRate(rate float64) SeriesOption {
	return func(s *MotionSVDSeries) error {
		if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
			return fmt.Errorf("%w: rate must be positive, got %v", ErrConfig, rate)
		}
		s.rate = rate
		s.hasRate = true
		return nil
	}
}

// WithStartingTime sets the time of the first sample, in seconds, for a
// series sampled at a fixed rate.
func WithStartingTime(t float64) SeriesOption {
	return func(s *MotionSVDSeries) error {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: starting time must be finite, got %v", ErrConfig, t)
		}
		s.startingTime = t
		s.hasStartingTime = true
		return nil
	}
}

// WithTimestamps gives one timestamp in seconds per row of data.
// It cannot be combined with WithRate or WithStartingTime.
func WithTimestamps(timestamps []float64) SeriesOption {
	return func(s *MotionSVDSeries) error {
		if floats.HasNaN(timestamps) {
			return fmt.Errorf("%w: timestamps must not be NaN", ErrConfig)
		}
		for i, ts := range timestamps {
			if math.IsInf(ts, 0) {
				return fmt.Errorf("%w: timestamp %d is infinite", ErrConfig, i)
			}
		}
		s.timestamps = slices.Clone(timestamps)
		s.hasTimestamps = true
		return nil
	}
}

// WithComments sets free-form remarks. Defaults to "no comments".
func WithComments(comments string) SeriesOption {
	return func(s *MotionSVDSeries) error {
		s.comments = comments
		return nil
	}
}

// WithResolution sets the smallest meaningful difference between values in
// data, in the specified unit. -1 means unknown.
func WithResolution(resolution float64) SeriesOption {
	return func(s *MotionSVDSeries) error {
		s.resolution = resolution
		return nil
	}
}

// WithConversion sets the scalar that converts stored data to unit.
func WithConversion(conversion float64) SeriesOption {
	return func(s *MotionSVDSeries) error {
		s.conversion = conversion
		return nil
	}
}

// WithOffset sets the scalar added to data after conversion.
func WithOffset(offset float64) SeriesOption {
	return func(s *MotionSVDSeries) error {
		s.offset = offset
		return nil
	}
}

// WithControl labels each row of data with an integer. description
// explains each label value.
func WithControl(control []uint8, description []string) SeriesOption {
	return func(s *MotionSVDSeries) error {
		s.control = slices.Clone(control)
		s.controlDescription = slices.Clone(description)
		return nil
	}
}

// IOOption configures Write and Read.
type IOOption func(*ioConfig)

type ioConfig struct {
	logger *slog.Logger
}

// WithLogger logs read and write progress to logger.
// slog.Default is used otherwise.
func WithLogger(logger *slog.Logger) IOOption {
	return func(c *ioConfig) {
		c.logger = logger
	}
}

func newIOConfig(opts ...IOOption) ioConfig {
	var c ioConfig
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}
