package poller_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/jinjernot/wg-sub000/internal/mocks"
	"github.com/jinjernot/wg-sub000/internal/poller"
)

var (
	noon  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	night = time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC)
)

func setupTestPoller(t *testing.T, now *time.Time) poller.AdaptivePoller {
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return *now }).AnyTimes()
	return poller.New(poller.DefaultConfig(), clock)
}

func TestAdaptivePoller_StartsAtBase(t *testing.T) {
	now := noon
	p := setupTestPoller(t, &now)

	assert.Equal(t, 60*time.Second, p.NextInterval())
}

func TestAdaptivePoller_QuietAfterThreshold(t *testing.T) {
	now := noon
	p := setupTestPoller(t, &now)

	for i := 0; i < 4; i++ {
		p.RecordActivity(false)
		assert.Equal(t, 60*time.Second, p.NextInterval(), "poll %d", i+1)
	}
	p.RecordActivity(false)
	assert.Equal(t, 120*time.Second, p.NextInterval())
	assert.Equal(t, 5, p.Stats().ConsecutiveEmptyPolls)
}

func TestAdaptivePoller_ActivityResets(t *testing.T) {
	now := noon
	p := setupTestPoller(t, &now)

	for i := 0; i < 6; i++ {
		p.RecordActivity(false)
	}
	assert.Equal(t, 120*time.Second, p.NextInterval())

	p.RecordActivity(true)
	assert.Equal(t, 60*time.Second, p.NextInterval())
	assert.Equal(t, 0, p.Stats().ConsecutiveEmptyPolls)
}

func TestAdaptivePoller_OffHoursOverridesWithoutResettingCounter(t *testing.T) {
	now := night
	p := setupTestPoller(t, &now)

	p.RecordActivity(false)
	p.RecordActivity(false)
	assert.Equal(t, 300*time.Second, p.NextInterval())

	p.RecordActivity(true)
	assert.Equal(t, 300*time.Second, p.NextInterval(), "off-hours wins over activity")

	for i := 0; i < 5; i++ {
		p.RecordActivity(false)
	}
	assert.True(t, p.Stats().OffHours)

	now = noon
	assert.Equal(t, 120*time.Second, p.NextInterval(), "quiet state survives the off-hours window")
	assert.Equal(t, 5, p.Stats().ConsecutiveEmptyPolls)
}

func TestAdaptivePoller_StatsSinceActivity(t *testing.T) {
	now := noon
	p := setupTestPoller(t, &now)

	now = noon.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, p.Stats().SinceActivity)

	p.RecordActivity(true)
	now = noon.Add(100 * time.Second)
	assert.Equal(t, 10*time.Second, p.Stats().SinceActivity)
}

func TestAdaptivePoller_Location(t *testing.T) {
	loc := time.FixedZone("CST", -6*3600)
	ctrl := gomock.NewController(t)
	clock := mocks.NewMockClock(ctrl)
	// 09:00 UTC is 03:00 at UTC-6
	clock.EXPECT().Now().Return(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)).AnyTimes()

	cfg := poller.DefaultConfig()
	cfg.Location = loc
	p := poller.New(cfg, clock)

	assert.Equal(t, 300*time.Second, p.NextInterval())
}

func TestInWindow(t *testing.T) {
	tests := []struct {
		name       string
		hour       int
		start, end int
		expected   bool
	}{
		{"inside", 3, 2, 7, true},
		{"at start", 2, 2, 7, true},
		{"at end", 7, 2, 7, false},
		{"before", 1, 2, 7, false},
		{"wrapping late", 23, 22, 6, true},
		{"wrapping early", 5, 22, 6, true},
		{"wrapping outside", 12, 22, 6, false},
		{"empty window", 3, 4, 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, poller.InWindow(tt.hour, tt.start, tt.end))
		})
	}
}
