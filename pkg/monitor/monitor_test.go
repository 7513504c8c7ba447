/*
 * Copyright 2026 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package monitor

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/wifimon/pkg/adapter"
	"github.com/carverauto/wifimon/pkg/models"
)

// MockAdapterReader mocks adapter.Reader for engine tests.
type MockAdapterReader struct {
	mock.Mock
}

func (m *MockAdapterReader) Read(ctx context.Context) (*adapter.Reading, error) {
	args := m.Called(ctx)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*adapter.Reading), args.Error(1)
}

func connectedReading(ssid, bssid string, signal int) *adapter.Reading {
	return &adapter.Reading{
		PoweredOn:      true,
		SSID:           ssid,
		BSSID:          bssid,
		SignalStrength: intPtr(signal),
		Secure:         true,
	}
}

func newTestMonitor(t *testing.T, reader adapter.Reader, clock Clock) *Monitor {
	t.Helper()

	m, err := New(&Config{}, reader, clock, nil)
	require.NoError(t, err)

	return m
}

// advanceBeyondGuards moves the fake clock far enough past the throttle and
// the cache TTL that the next unforced tick performs a real read.
func advanceBeyondGuards(clock *fakeClock) {
	clock.Advance(defaultPollInterval)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(&Config{}, nil, newFakeClock(), nil)
	assert.ErrorIs(t, err, ErrNilReader)

	reader := &MockAdapterReader{}

	_, err = New(&Config{SignalDeltaThreshold: -1}, reader, newFakeClock(), nil)
	assert.ErrorIs(t, err, ErrNegativeThreshold)

	_, err = New(&Config{
		BaseRetryDelay: models.Duration(2 * time.Minute),
		MaxRetryDelay:  models.Duration(time.Minute),
	}, reader, newFakeClock(), nil)
	assert.ErrorIs(t, err, ErrBaseDelayAboveMax)
}

func TestMonitor_InitialStatusIsUnknown(t *testing.T) {
	m := newTestMonitor(t, &MockAdapterReader{}, newFakeClock())

	assert.Equal(t, models.StateUnknown, m.CurrentStatus().State)
}

func TestMonitor_PublishAndDeduplicate(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)

	status := m.CurrentStatus()
	require.Equal(t, models.StateConnected, status.State)
	require.NotNil(t, status.Info)
	assert.Equal(t, "HomeNet", status.Info.SSID)

	// Identical observations are read but never republished.
	for i := 0; i < 5; i++ {
		advanceBeyondGuards(clock)
		m.tick(ctx, false, true)
	}

	assert.Len(t, m.History(0), 1)
	assert.Equal(t, 1, m.cache.ChangeCount())
	reader.AssertNumberOfCalls(t, "Read", 6)
}

func TestMonitor_SignalSignificanceThreshold(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -54), nil).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -56), nil).Once()

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true) // -54: below threshold, suppressed
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true) // -56: 6 dBm from the cached -50, published

	require.NotNil(t, m.CurrentStatus().Info.SignalStrength)
	assert.Equal(t, -56, *m.CurrentStatus().Info.SignalStrength)

	events := m.History(0)
	require.Len(t, events, 2)
	assert.Equal(t, models.EventConnected, events[0].Type)
	assert.Equal(t, models.EventSignalChanged, events[1].Type)
	require.NotNil(t, events[1].OldStrength)
	assert.Equal(t, -50, *events[1].OldStrength)
	assert.Equal(t, -56, *events[1].NewStrength)
}

func TestMonitor_DisabledAndDisconnectedMapping(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(&adapter.Reading{PoweredOn: false}, nil).Once()
	reader.On("Read", mock.Anything).Return(&adapter.Reading{PoweredOn: true}, nil).Once()

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	assert.Equal(t, models.StateDisabled, m.CurrentStatus().State)

	advanceBeyondGuards(clock)
	m.tick(ctx, false, true)
	assert.Equal(t, models.StateDisconnected, m.CurrentStatus().State)
}

func TestMonitor_ConnectedAtCarriesForwardAcrossSignalChanges(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -60), nil).Once()

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	firstConnectedAt := m.CurrentStatus().Info.ConnectedAt

	advanceBeyondGuards(clock)
	m.tick(ctx, false, true)

	assert.Equal(t, -60, *m.CurrentStatus().Info.SignalStrength)
	assert.Equal(t, firstConnectedAt, m.CurrentStatus().Info.ConnectedAt)
}

func TestMonitor_UserInterventionErrorIsNotRetried(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, os.ErrPermission)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)

	status := m.CurrentStatus()
	require.Equal(t, models.StateError, status.State)
	require.NotNil(t, status.Error)
	assert.Equal(t, models.ErrorKindPermissionDenied, status.Error.Kind)

	// No backoff timer armed and no retry slot consumed.
	assert.Empty(t, clock.AfterCalls())
	assert.Equal(t, 0, m.RetryStatus().Attempts)
	assert.True(t, m.RetryStatus().CanRetry)

	// The same failure is published exactly once.
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true)
	assert.Len(t, m.History(0), 1)
	assert.Empty(t, clock.AfterCalls())
}

func TestMonitor_RetryableErrorSchedulesBackoff(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, syscall.ENETDOWN).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil).Once()

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)

	require.Equal(t, models.StateError, m.CurrentStatus().State)
	assert.Equal(t, models.ErrorKindNetworkUnavailable, m.CurrentStatus().Error.Kind)
	assert.Equal(t, 1, m.RetryStatus().Attempts)

	// The backoff timer is armed from the retry goroutine.
	require.Eventually(t, func() bool {
		return len(clock.AfterCalls()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2*time.Second, clock.AfterCalls()[0])

	// Fire the backoff timer; the retry resolves and resets the controller.
	clock.Advance(2 * time.Second)
	clock.FireAfter()

	require.Eventually(t, func() bool {
		return m.CurrentStatus().State == models.StateConnected
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0, m.RetryStatus().Attempts)
	m.wg.Wait()
}

func TestMonitor_PersistentErrorDoublesBackoff(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, syscall.ENETDOWN)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)

	want := []time.Duration{
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		32 * time.Second,
	}

	for i, expected := range want {
		require.Eventually(t, func() bool {
			return len(clock.AfterCalls()) == i+1
		}, time.Second, 5*time.Millisecond)

		assert.Equal(t, expected, clock.AfterCalls()[i])
		assert.Equal(t, i+1, m.RetryStatus().Attempts)

		clock.Advance(expected)
		clock.FireAfter()
	}

	// Budget spent: no sixth timer, manual retry refused.
	require.Eventually(t, func() bool {
		return !m.retryPendingLocked() && !m.RetryStatus().CanRetry
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, clock.AfterCalls(), defaultMaxRetryAttempts)
	assert.ErrorIs(t, m.RetryNow(ctx), ErrRetriesExhausted)
	m.wg.Wait()
}

func TestMonitor_TimerTicksDoNotStackRetries(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, syscall.ENETDOWN)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)

	require.Eventually(t, func() bool {
		return len(clock.AfterCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	// Regular polling while a retry timer is armed must not arm more.
	for i := 0; i < 5; i++ {
		advanceBeyondGuards(clock)
		m.tick(ctx, false, true)
	}

	assert.Len(t, clock.AfterCalls(), 1)
	assert.Equal(t, 1, m.RetryStatus().Attempts)
}

func TestMonitor_ThrottleAndCacheTTLSuppressReads(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 1)

	// Within the minimum tick interval: no read at all.
	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 1)

	// Past the throttle but inside the cache TTL: still no read.
	clock.Advance(600 * time.Millisecond)
	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 1)

	// Past the TTL: the adapter is queried again.
	clock.Advance(500 * time.Millisecond)
	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 2)
}

func TestMonitor_ForceRefreshBypassesGuards(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("CafeNet", "11:22:33:44:55:66", -60), nil).Once()

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	require.Equal(t, "HomeNet", m.CurrentStatus().Info.SSID)

	// No clock movement: a normal tick would be throttled.
	m.ForceRefresh(ctx)

	assert.Equal(t, "CafeNet", m.CurrentStatus().Info.SSID)
	reader.AssertNumberOfCalls(t, "Read", 2)
}

func TestMonitor_RetryNowConsumesSlot(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	require.NoError(t, m.RetryNow(ctx))

	// The successful read resolves the status and resets the budget.
	assert.Equal(t, models.StateConnected, m.CurrentStatus().State)
	assert.Equal(t, 0, m.RetryStatus().Attempts)
}

func TestMonitor_RetryNowConsumesSingleSlot(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, syscall.ENETDOWN)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	require.NoError(t, m.RetryNow(ctx))
	require.Equal(t, models.StateError, m.CurrentStatus().State)
	assert.Equal(t, 1, m.RetryStatus().Attempts)

	// A second manual retry against the identical failure costs exactly
	// one more slot; the deduplicated tick must not arm a backoff timer
	// that would burn another.
	require.NoError(t, m.RetryNow(ctx))

	assert.Equal(t, 2, m.RetryStatus().Attempts)
	assert.Empty(t, clock.AfterCalls())
	assert.True(t, m.RetryStatus().CanRetry)
}

func TestMonitor_ResetErrorState(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, os.ErrPermission)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	require.Equal(t, models.StateError, m.CurrentStatus().State)

	m.ResetErrorState()

	// The cache was cleared, so the very same failure publishes again.
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true)

	assert.Len(t, m.History(0), 2)
	assert.Equal(t, 0, m.RetryStatus().Attempts)
}

func TestMonitor_ClearHistory(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil)

	m := newTestMonitor(t, reader, clock)
	m.tick(context.Background(), false, true)
	require.Len(t, m.History(0), 1)

	m.ClearHistory()

	assert.Empty(t, m.History(0))
	assert.Zero(t, m.ConnectionStats().TotalEvents)
}

func TestMonitor_PauseResume(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 1)

	m.Pause()

	advanceBeyondGuards(clock)
	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 1)

	m.Resume()

	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 2)
}

func TestMonitor_StartStopLifecycle(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	errCh := make(chan error, 1)

	go func() {
		errCh <- m.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return m.CurrentStatus().State == models.StateConnected
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, m.Start(ctx), ErrAlreadyStarted)

	require.NoError(t, m.Stop(ctx))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}

	// A tick after Stop is a no-op.
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true)
	reader.AssertNumberOfCalls(t, "Read", 1)
}

func TestMonitor_StopCancelsScheduledRetry(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(nil, syscall.ENETDOWN)

	m := newTestMonitor(t, reader, clock)
	ctx := context.Background()

	errCh := make(chan error, 1)

	go func() {
		errCh <- m.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return len(clock.AfterCalls()) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop(ctx))
	<-errCh

	// Firing the armed timer after Stop must not trigger another read.
	clock.Advance(2 * time.Second)
	clock.FireAfter()

	time.Sleep(20 * time.Millisecond)
	reader.AssertNumberOfCalls(t, "Read", 1)
}

func TestMonitor_PathWatcherTriggersTick(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(&adapter.Reading{PoweredOn: true}, nil).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil).Once()

	watcher := make(chan struct{}, 1)

	m := newTestMonitor(t, reader, clock)
	m.SetPathWatcher(watcher)

	ctx := context.Background()
	errCh := make(chan error, 1)

	go func() {
		errCh <- m.Start(ctx)
	}()

	require.Eventually(t, func() bool {
		return m.CurrentStatus().State == models.StateDisconnected
	}, time.Second, 5*time.Millisecond)

	advanceBeyondGuards(clock)
	watcher <- struct{}{}

	require.Eventually(t, func() bool {
		return m.CurrentStatus().State == models.StateConnected
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, m.Stop(ctx))
	<-errCh
}

// recordingSubscriber captures callbacks under a lock; dispatch happens on the
// registry goroutine.
type recordingSubscriber struct {
	mu          sync.Mutex
	statuses    []models.NetworkStatus
	connects    []*models.NetworkInfo
	disconnects int
}

func (s *recordingSubscriber) OnStatusChanged(status models.NetworkStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses = append(s.statuses, status)
}

func (s *recordingSubscriber) OnConnected(info *models.NetworkInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connects = append(s.connects, info)
}

func (s *recordingSubscriber) OnDisconnected() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disconnects++
}

func (s *recordingSubscriber) snapshot() (int, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.statuses), len(s.connects), s.disconnects
}

func TestMonitor_SubscriberNotifications(t *testing.T) {
	clock := newFakeClock()
	reader := &MockAdapterReader{}
	reader.On("Read", mock.Anything).Return(&adapter.Reading{PoweredOn: true}, nil).Once()
	reader.On("Read", mock.Anything).Return(connectedReading("HomeNet", "aa:bb:cc:dd:ee:ff", -50), nil).Once()
	reader.On("Read", mock.Anything).Return(&adapter.Reading{PoweredOn: true}, nil)

	m := newTestMonitor(t, reader, clock)

	sub := &recordingSubscriber{}
	id := m.Subscribe(sub)

	m.subs.start()
	defer m.subs.stop()

	ctx := context.Background()

	m.tick(ctx, false, true) // disconnected
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true) // connected
	advanceBeyondGuards(clock)
	m.tick(ctx, false, true) // disconnected again

	require.Eventually(t, func() bool {
		statuses, connects, disconnects := sub.snapshot()
		return statuses == 3 && connects == 1 && disconnects == 1
	}, time.Second, 5*time.Millisecond)

	sub.mu.Lock()
	assert.Equal(t, "HomeNet", sub.connects[0].SSID)
	sub.mu.Unlock()

	// After unsubscribing, nothing more is delivered.
	m.Unsubscribe(id)

	m.ForceRefresh(ctx)

	time.Sleep(20 * time.Millisecond)

	statuses, _, _ := sub.snapshot()
	assert.Equal(t, 3, statuses)
}

// retryPendingLocked reads the pending flag under the engine lock.
func (m *Monitor) retryPendingLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.retryPending
}
