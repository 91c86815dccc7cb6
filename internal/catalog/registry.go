package catalog

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-admin-dashboard/internal/collection"
	"github.com/noah-isme/sma-admin-dashboard/internal/remote"
	"github.com/noah-isme/sma-admin-dashboard/internal/store"
	"github.com/noah-isme/sma-admin-dashboard/pkg/config"
)

// Observer collects every metric a controller emits.
type Observer interface {
	collection.Metrics
	store.Observer
	remote.Observer
}

// Deps are shared by every controller in a registry.
type Deps struct {
	KeyPrefix  string
	Remote     config.RemoteConfig
	Backend    store.Backend
	HTTPClient *http.Client
	Logger     *zap.Logger
	Notifier   collection.Notifier
	Observer   Observer
	Clock      func() time.Time
}

// Registry holds one module per entity, in declaration order.
type Registry struct {
	deps    Deps
	modules []Module
	byName  map[string]Module
	keys    map[string]string
}

// NewRegistry builds an empty registry; use Register or NewDefaultRegistry.
func NewRegistry(deps Deps) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.KeyPrefix == "" {
		deps.KeyPrefix = "dashboard"
	}
	return &Registry{deps: deps, byName: map[string]Module{}, keys: map[string]string{}}
}

// NewDefaultRegistry registers every dashboard entity.
func NewDefaultRegistry(deps Deps) (*Registry, error) {
	r := NewRegistry(deps)
	steps := []func(*Registry) error{
		func(r *Registry) error { return Register(r, StudentDefinition()) },
		func(r *Registry) error { return Register(r, TeacherDefinition()) },
		func(r *Registry) error { return Register(r, CourseDefinition()) },
		func(r *Registry) error { return Register(r, AttendanceDefinition()) },
		func(r *Registry) error { return Register(r, AssignmentDefinition()) },
		func(r *Registry) error { return Register(r, ResultDefinition()) },
		func(r *Registry) error { return Register(r, FeeDefinition()) },
		func(r *Registry) error { return Register(r, AnnouncementDefinition()) },
		func(r *Registry) error { return Register(r, ResourceDefinition()) },
		func(r *Registry) error { return Register(r, MessageDefinition()) },
		func(r *Registry) error { return Register(r, SettingDefinition()) },
		func(r *Registry) error { return Register(r, ProductDefinition()) },
		func(r *Registry) error { return Register(r, AnalyticsDefinition()) },
		func(r *Registry) error { return Register(r, StudentProfileDefinition()) },
		func(r *Registry) error { return Register(r, CalendarDefinition()) },
	}
	for _, step := range steps {
		if err := step(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a controller for def. Store keys must be unique: each key has
// exactly one writer.
func Register[T collection.Record[T]](r *Registry, def Definition[T]) error {
	if _, dup := r.byName[def.Name]; dup {
		return fmt.Errorf("catalog: entity %q registered twice", def.Name)
	}
	key := r.deps.KeyPrefix + ":" + def.Name
	if owner, taken := r.keys[key]; taken {
		return fmt.Errorf("catalog: store key %q already owned by %s", key, owner)
	}

	opts := collection.Options[T]{
		Name:      def.Name,
		Key:       key,
		Schema:    def.Schema,
		Backend:   r.deps.Backend,
		Seed:      def.Seed,
		Summarize: def.Summarize,
		Timeout:   r.deps.Remote.Timeout,
		Clock:     r.deps.Clock,
		Logger:    r.deps.Logger,
		Notifier:  r.deps.Notifier,
	}
	if r.deps.Observer != nil {
		opts.Metrics = r.deps.Observer
		opts.Observer = r.deps.Observer
	}
	if r.deps.Remote.RemoteEnabled(def.Name) {
		cfg := remote.Config{
			BaseURL:    r.deps.Remote.BaseURL,
			Path:       def.Path,
			Entity:     def.Name,
			HTTPClient: r.deps.HTTPClient,
		}
		if r.deps.Observer != nil {
			cfg.Observer = r.deps.Observer
		}
		opts.Remote = remote.NewClient[T](cfg)
	}

	ctrl, err := collection.New(opts)
	if err != nil {
		return err
	}
	m := &module[T]{def: def, ctrl: ctrl}
	r.modules = append(r.modules, m)
	r.byName[def.Name] = m
	r.keys[key] = def.Name
	return nil
}

// Modules returns every module in registration order.
func (r *Registry) Modules() []Module {
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// Module looks a module up by route name.
func (r *Registry) Module(name string) (Module, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// LoadAll loads every controller concurrently and waits for all of them.
func (r *Registry) LoadAll(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, len(r.modules))
	for i, m := range r.modules {
		wg.Add(1)
		go func(i int, m Module) {
			defer wg.Done()
			errs[i] = m.Load(ctx)
		}(i, m)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("load %s: %w", r.modules[i].Name(), err)
		}
	}
	r.deps.Logger.Info("collections loaded", zap.Int("count", len(r.modules)))
	return nil
}

// Ready reports whether every controller finished loading.
func (r *Registry) Ready() bool {
	for _, m := range r.modules {
		if m.State() != collection.Ready {
			return false
		}
	}
	return true
}

// PendingTotal sums pending markers across every module.
func (r *Registry) PendingTotal() int {
	total := 0
	for _, m := range r.modules {
		total += m.PendingCount()
	}
	return total
}
