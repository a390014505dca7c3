package alert_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinjernot/wg-sub000/internal/alert"
	"github.com/jinjernot/wg-sub000/internal/domain"
	"github.com/jinjernot/wg-sub000/internal/logger"
	"github.com/jinjernot/wg-sub000/internal/mocks"
)

var testNow = time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testMultiMocks struct {
	clock *mocks.MockClock
	first *mocks.MockAlertSink
	other *mocks.MockAlertSink
}

func setupTestMulti(t *testing.T) (alert.Dispatcher, *testMultiMocks) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &testMultiMocks{
		clock: mocks.NewMockClock(ctrl),
		first: mocks.NewMockAlertSink(ctrl),
		other: mocks.NewMockAlertSink(ctrl),
	}
	m.clock.EXPECT().Now().Return(testNow).AnyTimes()
	m.first.EXPECT().Name().Return("first").AnyTimes()
	m.other.EXPECT().Name().Return("other").AnyTimes()

	return alert.NewMulti(m.clock, time.Second, []alert.Sink{m.first, m.other}), m
}

func testSnapshot() domain.TradeSnapshot {
	return domain.TradeSnapshot{
		TradeHash:     "abc123",
		OwnerUsername: "davidvs",
		Platform:      domain.PlatformNoones,
	}
}

func TestMulti_Dispatch_StampsAndFansOut(t *testing.T) {
	d, m := setupTestMulti(t)
	a := alert.ForTrade(alert.KindNewTrade, alert.LevelInfo, testSnapshot())
	a.Title = "New trade"

	var delivered []alert.Alert
	capture := func(_ context.Context, got alert.Alert) error {
		delivered = append(delivered, got)
		return nil
	}
	m.first.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(capture)
	m.other.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(capture)

	require.NoError(t, d.Dispatch(context.Background(), a))
	require.Len(t, delivered, 2)
	assert.NotEmpty(t, delivered[0].ID)
	assert.Equal(t, delivered[0].ID, delivered[1].ID)
	assert.Equal(t, testNow, delivered[0].Timestamp)
	assert.Equal(t, "abc123", delivered[0].TradeHash)
	assert.Equal(t, "davidvs", delivered[0].Owner)
}

func TestMulti_Dispatch_PartialFailureSucceeds(t *testing.T) {
	d, m := setupTestMulti(t)

	m.first.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("webhook down"))
	m.other.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	assert.NoError(t, d.Dispatch(context.Background(), alert.Alert{Kind: alert.KindReminder}))
}

func TestMulti_Dispatch_AllSinksFail(t *testing.T) {
	d, m := setupTestMulti(t)

	m.first.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("webhook down"))
	m.other.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("bus down"))

	err := d.Dispatch(context.Background(), alert.Alert{Kind: alert.KindReminder})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoSinks))
	assert.Contains(t, err.Error(), "webhook down")
	assert.Contains(t, err.Error(), "bus down")
}

func TestMulti_Dispatch_SinkGetsDeadline(t *testing.T) {
	d, m := setupTestMulti(t)

	m.first.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, _ alert.Alert) error {
		_, ok := ctx.Deadline()
		assert.True(t, ok)
		return nil
	})
	m.other.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, d.Dispatch(context.Background(), alert.Alert{Kind: alert.KindStatusChange}))
}

func TestMulti_Dispatch_NoSinks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(testNow).AnyTimes()

	d := alert.NewMulti(clock, time.Second, nil)
	assert.NoError(t, d.Dispatch(context.Background(), alert.Alert{Kind: alert.KindNewTrade}))

	id, err := d.OpenThread(context.Background(), alert.Alert{Kind: alert.KindNewTrade})
	assert.NoError(t, err)
	assert.Empty(t, id)
}

type threadSink struct {
	id  string
	err error
}

func (s *threadSink) Name() string {
	return "threads"
}

func (s *threadSink) Send(context.Context, alert.Alert) error {
	return nil
}

func (s *threadSink) OpenThread(context.Context, alert.Alert) (string, error) {
	return s.id, s.err
}

func TestMulti_OpenThread(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(testNow).AnyTimes()

	t.Run("first opener wins", func(t *testing.T) {
		d := alert.NewMulti(clock, time.Second, []alert.Sink{
			&threadSink{err: errors.New("forbidden")},
			&threadSink{id: "thread-1"},
		})
		id, err := d.OpenThread(context.Background(), alert.Alert{TradeHash: "abc123"})
		require.NoError(t, err)
		assert.Equal(t, "thread-1", id)
	})

	t.Run("every opener fails", func(t *testing.T) {
		d := alert.NewMulti(clock, time.Second, []alert.Sink{&threadSink{err: errors.New("forbidden")}})
		id, err := d.OpenThread(context.Background(), alert.Alert{TradeHash: "abc123"})
		require.Error(t, err)
		assert.Empty(t, id)
	})
}

func TestAlert_WithFieldDoesNotAlias(t *testing.T) {
	base := alert.Alert{Kind: alert.KindAttachment}.WithField("Bank", "BBVA")
	a := base.WithField("Author", "buyer1")
	b := base.WithField("Author", "buyer2")

	assert.Len(t, base.Fields, 1)
	assert.Equal(t, "buyer1", a.Fields[1].Value)
	assert.Equal(t, "buyer2", b.Fields[1].Value)
}
