// Package notifier provides a topic broadcast mechanism for SSE updates.
package notifier

import (
	"strings"
	"sync"
)

// TopicRuns is broadcast when new rows were ingested into the store.
const TopicRuns = "runs"

// ReportTopic is the topic for a re-render of one panel of an open report.
func ReportTopic(reportID, panelName string) string {
	return "report/" + reportID + "/" + panelName
}

// ReportPanel extracts the panel name from a topic of reportID.
func ReportPanel(topic, reportID string) (string, bool) {
	return strings.CutPrefix(topic, "report/"+reportID+"/")
}

// Subscription receives pings on C and collects the topics broadcast since
// the last Drain. Topics are never dropped; repeated topics are coalesced.
type Subscription struct {
	C chan struct{}

	mu      sync.Mutex
	pending []string
	seen    map[string]struct{}
}

// Drain returns the pending topics in broadcast order and clears them.
func (s *Subscription) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	s.seen = map[string]struct{}{}
	return out
}

func (s *Subscription) add(topic string) {
	s.mu.Lock()
	if _, ok := s.seen[topic]; !ok {
		s.seen[topic] = struct{}{}
		s.pending = append(s.pending, topic)
	}
	s.mu.Unlock()

	select {
	case s.C <- struct{}{}:
	default:
		// already pinged, the listener drains everything on wake up
	}
}

// Notifier broadcasts topics to all subscribed listeners.
type Notifier struct {
	mu        sync.RWMutex
	listeners map[*Subscription]struct{}
}

// New creates a new Notifier instance.
func New() *Notifier {
	return &Notifier{
		listeners: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a listener.
// The caller must call Unsubscribe when done to prevent goroutine leaks.
func (n *Notifier) Subscribe() *Subscription {
	s := &Subscription{C: make(chan struct{}, 1), seen: map[string]struct{}{}}
	n.mu.Lock()
	n.listeners[s] = struct{}{}
	n.mu.Unlock()
	return s
}

// Unsubscribe removes a listener and closes its channel.
func (n *Notifier) Unsubscribe(s *Subscription) {
	n.mu.Lock()
	delete(n.listeners, s)
	n.mu.Unlock()
	close(s.C)
}

// Broadcast queues topic on every listener and pings it. Never blocks.
func (n *Notifier) Broadcast(topic string) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for s := range n.listeners {
		s.add(topic)
	}
}
