package registry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"k8s.io/client-go/kubernetes"

	"github.com/rmarques/kprof/internal/profile"
)

// ConnectTimeout bounds the connection phase of every derived client,
// overriding any profile-level value. Centralized here so no stored
// profile can cause an indefinite hang against an unreachable cluster.
const ConnectTimeout = 10 * time.Second

var (
	// ErrNotConfigured indicates client derivation was asked for the
	// current selection while nothing is selected.
	ErrNotConfigured = errors.New("no profile selected")

	// ErrConnect indicates the client could not be constructed from a
	// resolved profile.
	ErrConnect = errors.New("client construction failed")
)

// Client derives a clientset from the current selection.
// ErrNotConfigured distinguishes a missing selection from a
// construction failure (ErrConnect).
func (r *Registry) Client(ctx context.Context) (kubernetes.Interface, error) {
	name, p, ok := r.Current()
	if !ok {
		return nil, ErrNotConfigured
	}
	return r.deriveClient(ctx, name, p)
}

// ClientFor derives a clientset from the named profile regardless of
// the current selection.
func (r *Registry) ClientFor(ctx context.Context, name string) (kubernetes.Interface, error) {
	p, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return r.deriveClient(ctx, name, p)
}

func (r *Registry) deriveClient(ctx context.Context, name string, p profile.Profile) (kubernetes.Interface, error) {
	p.ConnectTimeout = ConnectTimeout
	cfg := p.RestConfig()

	// Request timeout belongs to callers; the fixed policy bounds the
	// dial phase only.
	cfg.Timeout = 0
	dialer := &net.Dialer{Timeout: ConnectTimeout}
	cfg.Dial = dialer.DialContext

	client, err := r.build(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: profile %q: %w", ErrConnect, name, err)
	}
	return client, nil
}
