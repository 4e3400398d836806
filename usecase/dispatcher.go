package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fastygo/taskboard/domain"
)

// ActionHandler runs one UI action against a session.
type ActionHandler func(ctx context.Context, session *domain.Session, payload interface{}) error

// Dispatcher maps UI action names to handlers.
type Dispatcher struct {
	handlers map[string]ActionHandler
	mu       sync.RWMutex
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]ActionHandler),
	}
}

func (d *Dispatcher) Register(name string, handler ActionHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[name] = handler
}

func (d *Dispatcher) Execute(ctx context.Context, name string, session *domain.Session, payload interface{}) error {
	d.mu.RLock()
	handler, ok := d.handlers[name]
	d.mu.RUnlock()
	if !ok {
		return domain.WrapError(domain.ErrCodeNotFound, fmt.Sprintf("action %q not registered", name), domain.ErrUnknownAction)
	}
	return handler(ctx, session, payload)
}

// Actions lists the registered action names in sorted order.
func (d *Dispatcher) Actions() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
