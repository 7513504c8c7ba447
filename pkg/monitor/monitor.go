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

// Package monitor implements the wireless status-monitoring engine: a
// timer-driven poller plus an asynchronous path-change listener funneled
// through one serialization point, with status deduplication, bounded event
// history, stability scoring and capped-exponential-backoff retry.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/wifimon/pkg/adapter"
	"github.com/carverauto/wifimon/pkg/logger"
	"github.com/carverauto/wifimon/pkg/models"
)

// Monitor owns all mutable engine state for a single adapter. Multiple
// monitors share nothing; each instance carries its own cache, history and
// retry controller.
type Monitor struct {
	config Config
	reader adapter.Reader
	clock  Clock
	logger logger.Logger

	watcher  <-chan struct{}
	pressure PressureSampler

	// mu serializes every tick and guards everything below it. Two ticks
	// must never interleave their cache-update/history-append/publish
	// sequence or the deduplication invariant breaks.
	mu         sync.Mutex
	cache      *StatusCache
	history    *EventHistory
	stability  *StabilityAnalyzer
	retry      *RetryController
	published  models.NetworkStatus
	lastTickAt time.Time
	stopped    bool
	paused     bool
	started    bool
	done       chan struct{}

	// retryPending is set while a scheduled retry timer is armed so that
	// regular ticks observing the same error do not stack additional timers.
	retryPending     bool
	exhaustionLogged bool

	subs *subscriberRegistry

	wg       sync.WaitGroup
	reloadCh chan time.Duration
	degraded bool
}

// New creates a monitor. A nil clock defaults to the real clock; a nil
// logger to a no-op logger.
func New(config *Config, reader adapter.Reader, clock Clock, log logger.Logger) (*Monitor, error) {
	if reader == nil {
		return nil, ErrNilReader
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := config.withDefaults()

	if clock == nil {
		clock = realClock{}
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	m := &Monitor{
		config:    cfg,
		reader:    reader,
		clock:     clock,
		logger:    log,
		cache:     NewStatusCache(cfg.SignalDeltaThreshold, clock),
		history:   NewEventHistory(cfg.HistoryCapacity, cfg.SignalDeltaThreshold, clock),
		stability: NewStabilityAnalyzer(cfg.StabilityWindow),
		retry: NewRetryController(cfg.MaxRetryAttempts,
			time.Duration(cfg.BaseRetryDelay), time.Duration(cfg.MaxRetryDelay), clock),
		published: models.Unknown(),
		reloadCh:  make(chan time.Duration, 1),
	}

	m.subs = newSubscriberRegistry(log)

	return m, nil
}

// SetPathWatcher installs the asynchronous path-change notification channel.
// Must be called before Start. A nil channel leaves the monitor purely
// timer-driven.
func (m *Monitor) SetPathWatcher(ch <-chan struct{}) {
	m.watcher = ch
}

// SetPressureSampler installs the host resource-pressure signal. Must be
// called before Start. Without one the degraded interval is never used.
func (m *Monitor) SetPressureSampler(s PressureSampler) {
	m.pressure = s
}

// Subscribe registers a subscriber and returns a handle for Unsubscribe.
// Safe at any time, before or after Start.
func (m *Monitor) Subscribe(s Subscriber) string {
	return m.subs.subscribe(s)
}

// Unsubscribe removes a previously registered subscriber.
func (m *Monitor) Unsubscribe(id string) {
	m.subs.unsubscribe(id)
}

// Start begins the periodic poll and the path-change listener, blocking
// until the context is canceled or Stop is called. Implements the
// lifecycle.Service interface.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()

	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}

	m.started = true
	m.stopped = false
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	m.subs.start()

	interval := time.Duration(m.config.PollInterval)
	ticker := m.clock.Ticker(interval)

	defer ticker.Stop()

	m.logger.Info().
		Dur("interval", interval).
		Bool("path_watcher", m.watcher != nil).
		Msg("Starting wireless monitor")

	m.wg.Add(1)
	defer m.wg.Done()

	m.tick(ctx, false, true)
	m.adjustCadence(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			return nil
		case <-ticker.Chan():
			m.tick(ctx, false, true)
			m.adjustCadence(ctx)
		case <-m.watcher:
			m.tick(ctx, false, true)
		case newInterval := <-m.reloadCh:
			ticker.Stop()
			ticker = m.clock.Ticker(newInterval)

			m.logger.Info().Dur("interval", newInterval).Msg("Poll interval changed")
		}
	}
}

// Stop cancels the timer and the listener. When Stop returns, no further
// tick executes; a scheduled retry that fires afterwards is a no-op.
func (m *Monitor) Stop(_ context.Context) error {
	m.mu.Lock()

	if !m.started {
		m.mu.Unlock()
		return nil
	}

	m.started = false
	m.stopped = true
	close(m.done)
	m.mu.Unlock()

	m.wg.Wait()
	m.subs.stop()

	m.logger.Info().Msg("Wireless monitor stopped")

	return nil
}

// Pause suspends polling without discarding the timer or any engine state.
// When Pause returns, any in-flight tick has completed and no further tick
// executes until Resume.
func (m *Monitor) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paused = true
}

// Resume restores the configured cadence after a Pause.
func (m *Monitor) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.paused = false
}

// ForceRefresh clears the status cache and the throttle clock, then performs
// an immediate tick, bypassing both the TTL and the minimum-interval guard.
// For explicit user-triggered refresh.
func (m *Monitor) ForceRefresh(ctx context.Context) {
	m.mu.Lock()
	m.cache.Clear()
	m.lastTickAt = time.Time{}
	m.mu.Unlock()

	m.tick(ctx, true, true)
}

// RetryNow performs a manual retry, bypassing the scheduled backoff delay
// but still consuming exactly one retry slot. The resulting tick never arms
// the automatic chain itself; a failure observed by it costs no further
// slots until the next regular poll. Returns ErrRetriesExhausted when no
// slots remain.
func (m *Monitor) RetryNow(ctx context.Context) error {
	m.mu.Lock()

	if !m.retry.CanRetry() {
		m.mu.Unlock()
		return ErrRetriesExhausted
	}

	m.retry.RecordAttempt()
	m.mu.Unlock()

	m.tick(ctx, true, false)

	return nil
}

// ResetErrorState clears the retry controller and the status cache so the
// next tick republishes whatever the adapter reports.
func (m *Monitor) ResetErrorState() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.retry.Reset()
	m.cache.Clear()
	m.exhaustionLogged = false
}

// ClearHistory empties the event history and its lifetime counters.
func (m *Monitor) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history.Clear()
}

// CurrentStatus returns the last published status.
func (m *Monitor) CurrentStatus() models.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.published
}

// ConnectionStats returns the lifetime connection statistics.
func (m *Monitor) ConnectionStats() models.ConnectionStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.history.Stats()
}

// Stability scores the recent event window.
func (m *Monitor) Stability() models.StabilityReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stability.Analyze(m.history.Snapshot(m.config.StabilityWindow))
}

// RetryStatus describes the retry state machine.
func (m *Monitor) RetryStatus() models.RetryStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.retry.Status()
}

// History returns up to limit of the most recent events, oldest first.
func (m *Monitor) History(limit int) []models.ConnectionEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.history.Snapshot(limit)
}

// tick is the single unit of monitoring work: read, classify, dedup, record,
// publish. Both triggers (timer and watcher) and scheduled retries land
// here; mu makes the whole sequence atomic. forced ticks bypass the throttle
// and the cache TTL. armRetry is false only for manual retries, whose slot
// was already consumed by the caller.
func (m *Monitor) tick(ctx context.Context, forced, armRetry bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped || m.paused {
		return
	}

	now := m.clock.Now()

	if !forced {
		if now.Sub(m.lastTickAt) < time.Duration(m.config.MinTickInterval) {
			return
		}

		// A fresh cache entry means a significant change was just
		// published; re-reading inside the TTL is redundant work.
		if _, fresh := m.cache.Snapshot(time.Duration(m.config.CacheTTL)); fresh {
			return
		}
	}

	m.lastTickAt = now

	candidate := m.observe(ctx, now)

	if !m.cache.ShouldPublish(candidate) {
		// A deduplicated error still keeps the retry chain alive; the
		// status is only suppressed, not resolved.
		if armRetry && candidate.State == models.StateError &&
			candidate.Error.Retryable() && !candidate.Error.RequiresUserIntervention() {
			m.scheduleNextRetry(ctx)
		}

		return
	}

	previous := m.published

	m.cache.Update(candidate)
	event := m.history.Record(previous, candidate)
	m.published = candidate

	m.handleRetry(ctx, candidate, armRetry)
	m.publish(previous, candidate)
	m.logTransition(previous, candidate, event)
}

// observe performs one adapter read and maps it to a candidate status.
// Read failures never propagate as errors; they become Error statuses.
func (m *Monitor) observe(ctx context.Context, now time.Time) models.NetworkStatus {
	reading, err := m.reader.Read(ctx)
	if err != nil {
		return models.ErrorStatus(Classify(err))
	}

	switch {
	case !reading.PoweredOn:
		return models.Disabled()
	case reading.SSID == "":
		return models.Disconnected()
	default:
		return models.Connected(m.buildInfo(reading, now))
	}
}

// buildInfo converts a raw reading into NetworkInfo, carrying the original
// connection timestamp forward while the same network stays connected.
func (m *Monitor) buildInfo(reading *adapter.Reading, now time.Time) *models.NetworkInfo {
	info := &models.NetworkInfo{
		SSID:           reading.SSID,
		BSSID:          reading.BSSID,
		SignalStrength: reading.SignalStrength,
		Secure:         reading.Secure,
		Frequency:      reading.Frequency,
		Channel:        reading.Channel,
		Standard:       reading.Standard,
		ConnectedAt:    now,
	}

	if m.published.State == models.StateConnected && m.published.Info.SameNetwork(info) {
		info.ConnectedAt = m.published.Info.ConnectedAt
	}

	return info
}

// handleRetry applies the retry policy for the newly published status.
// Called with mu held.
func (m *Monitor) handleRetry(ctx context.Context, candidate models.NetworkStatus, armRetry bool) {
	if candidate.IsResolved() {
		m.retry.Reset()
		m.exhaustionLogged = false

		return
	}

	if candidate.State != models.StateError {
		return
	}

	netErr := candidate.Error

	if netErr.RequiresUserIntervention() {
		// Never auto-retried; surfaced once and the engine waits for
		// external action followed by an explicit refresh.
		m.logger.Warn().
			Str("kind", string(netErr.Kind)).
			Str("severity", string(netErr.Severity())).
			Str("suggestion", netErr.RecoverySuggestion()).
			Msg("Adapter failure requires user intervention")

		return
	}

	if !netErr.Retryable() || !armRetry {
		return
	}

	m.scheduleNextRetry(ctx)
}

// scheduleNextRetry consumes a retry slot and arms the backoff timer, unless
// one is already armed or the budget is spent. Called with mu held.
func (m *Monitor) scheduleNextRetry(ctx context.Context) {
	if m.retryPending {
		return
	}

	if !m.retry.CanRetry() {
		if !m.exhaustionLogged {
			m.exhaustionLogged = true

			m.logger.Warn().
				Int("attempts", m.retry.Attempts()).
				Msg("Retry attempts exhausted, waiting for manual intervention")
		}

		return
	}

	delay := m.retry.NextDelay()
	m.retry.RecordAttempt()
	m.retryPending = true
	m.scheduleRetry(ctx, delay)
}

// scheduleRetry arms a fire-and-forget timer that funnels another tick
// through the serialization point. Called with mu held.
func (m *Monitor) scheduleRetry(ctx context.Context, delay time.Duration) {
	done := m.done

	m.logger.Info().
		Dur("delay", delay).
		Int("attempt", m.retry.Attempts()).
		Msg("Scheduling retry")

	m.wg.Add(1)

	go func() {
		defer m.wg.Done()

		fired := false

		select {
		case <-ctx.Done():
		case <-doneOrNever(done):
		case <-m.clock.After(delay):
			fired = true
		}

		m.mu.Lock()
		m.retryPending = false
		m.mu.Unlock()

		if fired {
			m.tick(ctx, false, true)
		}
	}()
}

// publish enqueues subscriber notifications after state has committed.
// Called with mu held; delivery happens on the registry's goroutine.
func (m *Monitor) publish(previous, candidate models.NetworkStatus) {
	n := notification{status: candidate}

	if previous.State == models.StateDisconnected && candidate.State == models.StateConnected {
		n.connected = candidate.Info
	}

	if previous.State == models.StateConnected && candidate.State == models.StateDisconnected {
		n.disconnected = true
	}

	m.subs.publish(n)
}

func (m *Monitor) logTransition(previous, candidate models.NetworkStatus, event *models.ConnectionEvent) {
	ev := m.logger.Info().
		Str("from", string(previous.State)).
		Str("to", string(candidate.State))

	if candidate.Info != nil {
		ev = ev.Str("ssid", candidate.Info.SSID)

		if candidate.Info.SignalStrength != nil {
			ev = ev.Int("signal_dbm", *candidate.Info.SignalStrength)
		}
	}

	if candidate.Error != nil {
		ev = ev.Str("error_kind", string(candidate.Error.Kind)).
			Str("error", candidate.Error.Message)
	}

	if event != nil {
		ev = ev.Str("event", string(event.Type))
	}

	ev.Msg("Status transition published")
}

// adjustCadence consults the pressure sampler and hot-swaps the poll
// interval when the host pressure state changes. Runs on the Start loop
// goroutine, outside mu.
func (m *Monitor) adjustCadence(ctx context.Context) {
	if m.pressure == nil {
		return
	}

	pressured := m.pressure.UnderPressure(ctx)
	if pressured == m.degraded {
		return
	}

	m.degraded = pressured

	interval := time.Duration(m.config.PollInterval)
	if pressured {
		interval = time.Duration(m.config.DegradedPollInterval)
	}

	// Drop a stale queued value so the loop only sees the latest interval.
	select {
	case <-m.reloadCh:
	default:
	}

	select {
	case m.reloadCh <- interval:
	default:
	}
}

// doneOrNever lets scheduled retries outlive Start/Stop cycles safely: a
// retry armed before any Start has run has no done channel to watch.
func doneOrNever(done chan struct{}) <-chan struct{} {
	if done == nil {
		return make(chan struct{})
	}

	return done
}
