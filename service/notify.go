package service

import (
	"sync"

	"github.com/sirupsen/logrus"

	models "storefront/model"
)

// Notifier is a fire-and-forget sink for user-visible messages.
type Notifier interface {
	Notify(n models.Notification)
}

// Queue buffers notifications until the HTTP layer drains them into a
// response. Oldest entries are dropped past max.
type Queue struct {
	mu    sync.Mutex
	items []models.Notification
	max   int
}

func NewQueue(max int) *Queue {
	if max <= 0 {
		max = 32
	}
	return &Queue{max: max}
}

func (q *Queue) Notify(n models.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.max {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns and forgets everything queued so far.
func (q *Queue) Drain() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []models.Notification{}
	}
	return out
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (l LogNotifier) Notify(n models.Notification) {
	entry := l.Log.WithFields(logrus.Fields{"title": n.Title, "severity": n.Severity})
	if n.Severity == models.SeverityDestructive {
		entry.Warn(n.Description)
		return
	}
	entry.Debug(n.Description)
}

// Tee fans a notification out to several sinks.
type Tee []Notifier

func (t Tee) Notify(n models.Notification) {
	for _, s := range t {
		s.Notify(n)
	}
}

func info(title, description string) models.Notification {
	return models.Notification{Title: title, Description: description, Severity: models.SeverityDefault}
}

func failure(title, description string) models.Notification {
	return models.Notification{Title: title, Description: description, Severity: models.SeverityDestructive}
}
