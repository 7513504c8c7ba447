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
	"sync"

	"github.com/google/uuid"

	"github.com/carverauto/wifimon/pkg/logger"
	"github.com/carverauto/wifimon/pkg/models"
)

const notifyQueueSize = 64

// notification is one committed status transition queued for delivery.
type notification struct {
	status       models.NetworkStatus
	connected    *models.NetworkInfo // set on disconnected -> connected
	disconnected bool                // set on connected -> disconnected
}

// subscriberRegistry owns the subscriber list and delivers notifications from
// a dedicated goroutine so a slow subscriber can never block the engine's
// serialization point.
type subscriberRegistry struct {
	mu     sync.RWMutex
	subs   map[string]Subscriber
	logger logger.Logger

	queue chan notification
	done  chan struct{}
	wg    sync.WaitGroup
}

func newSubscriberRegistry(log logger.Logger) *subscriberRegistry {
	return &subscriberRegistry{
		subs:   make(map[string]Subscriber),
		logger: log,
		queue:  make(chan notification, notifyQueueSize),
	}
}

// subscribe registers a subscriber and returns its handle.
func (r *subscriberRegistry) subscribe(s Subscriber) string {
	id := uuid.NewString()

	r.mu.Lock()
	r.subs[id] = s
	r.mu.Unlock()

	return id
}

func (r *subscriberRegistry) unsubscribe(id string) {
	r.mu.Lock()
	delete(r.subs, id)
	r.mu.Unlock()
}

// start launches the dispatch goroutine. The registry survives Start/Stop
// cycles of its monitor, so start may be called again after stop.
func (r *subscriberRegistry) start() {
	r.mu.Lock()
	r.done = make(chan struct{})
	done := r.done
	r.mu.Unlock()

	r.wg.Add(1)

	go func() {
		defer r.wg.Done()

		for {
			select {
			case <-done:
				return
			case n := <-r.queue:
				r.dispatch(n)
			}
		}
	}()
}

// publish enqueues a notification without blocking. If consumers have fallen
// more than a full queue behind, the notification is dropped with a warning
// rather than stalling the tick path.
func (r *subscriberRegistry) publish(n notification) {
	select {
	case r.queue <- n:
	default:
		r.logger.Warn().
			Str("state", string(n.status.State)).
			Msg("Subscriber queue full, dropping notification")
	}
}

func (r *subscriberRegistry) dispatch(n notification) {
	r.mu.RLock()
	subs := make([]Subscriber, 0, len(r.subs))

	for _, s := range r.subs {
		subs = append(subs, s)
	}
	r.mu.RUnlock()

	for _, s := range subs {
		s.OnStatusChanged(n.status)

		if n.connected != nil {
			s.OnConnected(n.connected)
		}

		if n.disconnected {
			s.OnDisconnected()
		}
	}
}

// stop shuts down the dispatch goroutine. Queued but undelivered
// notifications are discarded.
func (r *subscriberRegistry) stop() {
	r.mu.Lock()
	if r.done != nil {
		close(r.done)
		r.done = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}
