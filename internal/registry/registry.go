// Package registry implements the named connection-profile registry: a
// concurrent map of profiles plus a single current selection, with
// client derivation and snapshot persistence.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"

	"github.com/rmarques/kprof/internal/profile"
)

// DefaultProfileName is the reserved name ambient inference registers
// under.
const DefaultProfileName = "default"

var (
	// ErrUnknownProfile indicates a lookup or selection by a name not
	// present in the registry.
	ErrUnknownProfile = errors.New("unknown profile name")
)

// Registry owns the profile map and the current selection. Both live
// behind one mutex so compound checks (select-if-exists, clear-if-
// removed) are atomic; a remove can never race a select into a
// dangling selection.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]profile.Profile
	current  string // empty = no selection

	infer ambientInferrer
	build clientBuilder
}

type ambientInferrer func(ctx context.Context) (profile.Profile, error)

type clientBuilder func(ctx context.Context, cfg *rest.Config) (kubernetes.Interface, error)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		profiles: make(map[string]profile.Profile),
		infer: func(context.Context) (profile.Profile, error) {
			return profile.InferAmbient()
		},
		build: func(_ context.Context, cfg *rest.Config) (kubernetes.Interface, error) {
			return kubernetes.NewForConfig(cfg)
		},
	}
}

// SetCurrent selects the named profile. The name must already be
// registered; on success a clone of its profile is returned. On
// ErrUnknownProfile the selection is left unchanged.
func (r *Registry) SetCurrent(name string) (profile.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.profiles[name]
	if !ok {
		return profile.Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	r.current = name
	return p.Clone(), nil
}

// ClearCurrent drops the current selection. It never fails.
func (r *Registry) ClearCurrent() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = ""
}

// Current returns the selected name and a clone of its profile, or
// ok=false when nothing is selected. A selection that no longer
// resolves is treated as no selection.
func (r *Registry) Current() (string, profile.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == "" {
		return "", profile.Profile{}, false
	}
	p, ok := r.profiles[r.current]
	if !ok {
		return "", profile.Profile{}, false
	}
	return r.current, p.Clone(), true
}

// List returns a full clone of the profile map; callers never observe
// partial updates and mutating the result does not affect the
// registry.
func (r *Registry) List() map[string]profile.Profile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]profile.Profile, len(r.profiles))
	for name, p := range r.profiles {
		out[name] = p.Clone()
	}
	return out
}

// Get returns a clone of the named profile.
func (r *Registry) Get(name string) (profile.Profile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.profiles[name]
	if !ok {
		return profile.Profile{}, false
	}
	return p.Clone(), true
}

// Put inserts or overwrites the named profile unconditionally and
// returns a clone of what was stored.
func (r *Registry) Put(name string, p profile.Profile) profile.Profile {
	stored := p.Clone()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[name] = stored
	return stored.Clone()
}

// PutRest converts a client library config and stores it under the
// given name.
func (r *Registry) PutRest(name string, cfg *rest.Config) profile.Profile {
	return r.Put(name, profile.FromRest(cfg))
}

// PutKubeconfig converts a parsed kubeconfig document and stores the
// result under the given name. On conversion failure the registry is
// left unchanged.
func (r *Registry) PutKubeconfig(_ context.Context, name string, doc *clientcmdapi.Config, opts profile.Options) (profile.Profile, error) {
	p, err := profile.FromKubeconfig(doc, opts)
	if err != nil {
		return profile.Profile{}, err
	}
	return r.Put(name, p), nil
}

// Remove deletes the named profile if present; removing an absent name
// is a no-op. When the removed name is the current selection, the
// selection is cleared in the same critical section.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == name {
		r.current = ""
	}
	delete(r.profiles, name)
}

// RegisterDefault infers a profile from the ambient environment and
// stores it under DefaultProfileName. On inference failure nothing is
// mutated and ok is false. Inference runs outside the lock.
func (r *Registry) RegisterDefault(ctx context.Context) (profile.Profile, bool) {
	p, err := r.infer(ctx)
	if err != nil {
		return profile.Profile{}, false
	}
	return r.Put(DefaultProfileName, p), true
}

// Len returns the number of registered profiles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// SetInferrer replaces the ambient-inference collaborator.
// For tests - avoids touching the local kubeconfig environment.
func (r *Registry) SetInferrer(f func(ctx context.Context) (profile.Profile, error)) {
	r.infer = f
}

// SetClientBuilder replaces the client-construction collaborator.
// For tests - avoids connecting to a real API server.
func (r *Registry) SetClientBuilder(f func(ctx context.Context, cfg *rest.Config) (kubernetes.Interface, error)) {
	r.build = f
}
