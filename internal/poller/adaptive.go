package poller

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jinjernot/wg-sub000/internal/adapter"
	"github.com/jinjernot/wg-sub000/internal/logger"
)

// Config holds the adaptive polling configuration
type Config struct {
	BaseInterval     time.Duration
	QuietInterval    time.Duration
	OffHoursInterval time.Duration
	// QuietThreshold is the number of consecutive empty polls before switching to QuietInterval
	QuietThreshold int
	// OffHoursStart and OffHoursEnd are local hours [start, end); start > end wraps midnight
	OffHoursStart int
	OffHoursEnd   int
	Location      *time.Location
}

// DefaultConfig returns 60s/120s/300s with five empty polls and an off-hours window of 02:00-07:00
func DefaultConfig() Config {
	return Config{
		BaseInterval:     60 * time.Second,
		QuietInterval:    120 * time.Second,
		OffHoursInterval: 300 * time.Second,
		QuietThreshold:   5,
		OffHoursStart:    2,
		OffHoursEnd:      7,
		Location:         time.UTC,
	}
}

// Stats is a snapshot of the poller state
type Stats struct {
	CurrentInterval       time.Duration `json:"current_interval"`
	ConsecutiveEmptyPolls int           `json:"consecutive_empty_polls"`
	SinceActivity         time.Duration `json:"since_activity"`
	OffHours              bool          `json:"off_hours"`
}

// AdaptivePoller computes the delay before the next poll of one account
//
//go:generate mockgen -source=adaptive.go -destination=../mocks/adaptive_poller.go -package=mocks -mock_names=AdaptivePoller=MockAdaptivePoller
type AdaptivePoller interface {
	// RecordActivity feeds the outcome of a poll
	RecordActivity(found bool)

	// NextInterval returns the delay before the next poll
	NextInterval() time.Duration

	// Stats returns a snapshot of the poller state
	Stats() Stats
}

type adaptivePoller struct {
	config Config
	clock  adapter.Clock

	mu               sync.Mutex
	current          time.Duration
	consecutiveEmpty int
	lastActivity     time.Time
}

// New creates an AdaptivePoller starting at the base interval
func New(config Config, clock adapter.Clock) AdaptivePoller {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &adaptivePoller{
		config:       config,
		clock:        clock,
		current:      config.BaseInterval,
		lastActivity: clock.Now(),
	}
}

func (p *adaptivePoller) RecordActivity(found bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if found {
		if p.current != p.config.BaseInterval {
			logger.Info("Activity detected, resetting poll interval", zap.Duration("interval", p.config.BaseInterval))
		}
		p.current = p.config.BaseInterval
		p.consecutiveEmpty = 0
		p.lastActivity = p.clock.Now()
		return
	}

	p.consecutiveEmpty++
	if p.consecutiveEmpty >= p.config.QuietThreshold && p.current != p.config.QuietInterval {
		p.current = p.config.QuietInterval
		logger.Info("No activity detected, increasing poll interval",
			zap.Int("empty_polls", p.consecutiveEmpty),
			zap.Duration("interval", p.config.QuietInterval))
	}
}

func (p *adaptivePoller) NextInterval() time.Duration {
	now := p.clock.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.inOffHours(now) {
		return p.config.OffHoursInterval
	}
	return p.current
}

func (p *adaptivePoller) Stats() Stats {
	now := p.clock.Now()

	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		CurrentInterval:       p.current,
		ConsecutiveEmptyPolls: p.consecutiveEmpty,
		SinceActivity:         now.Sub(p.lastActivity),
		OffHours:              p.inOffHours(now),
	}
}

func (p *adaptivePoller) inOffHours(now time.Time) bool {
	return InWindow(now.In(p.config.Location).Hour(), p.config.OffHoursStart, p.config.OffHoursEnd)
}

// InWindow reports whether hour lies in [start, end), wrapping midnight when start > end
func InWindow(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}
