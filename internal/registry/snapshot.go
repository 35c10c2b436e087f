package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"k8s.io/klog/v2"

	"github.com/rmarques/kprof/internal/profile"
	"github.com/rmarques/kprof/internal/store"
)

// StateBlobName is the logical name of the registry snapshot in the
// blob store.
const StateBlobName = "config.json"

var (
	// ErrMalformedSnapshot indicates a snapshot document that does not
	// match the expected structure.
	ErrMalformedSnapshot = errors.New("malformed snapshot")

	// ErrPersistence indicates the snapshot could not be written to or
	// read from the blob store.
	ErrPersistence = errors.New("persistence failed")
)

// snapshot is the external persisted format: the field names and
// shapes are a contract with any other reader of the state blob.
type snapshot struct {
	Profiles map[string]profile.Profile `json:"profiles"`
	Current  *string                    `json:"current"`
}

// Snapshot serializes the full registry state as a JSON document.
func (r *Registry) Snapshot() ([]byte, error) {
	r.mu.RLock()
	snap := snapshot{Profiles: make(map[string]profile.Profile, len(r.profiles))}
	for name, p := range r.profiles {
		snap.Profiles[name] = p.Clone()
	}
	if r.current != "" {
		name := r.current
		snap.Current = &name
	}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing snapshot: %w", err)
	}
	return data, nil
}

// Restore reconstructs a registry from a snapshot document. A
// selection that does not resolve against the restored profiles is
// repaired to no-selection rather than restored as a dangling
// reference.
func Restore(data []byte) (*Registry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var snap snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSnapshot, err)
	}

	r := New()
	for name, p := range snap.Profiles {
		r.profiles[name] = p.Clone()
	}
	if snap.Current != nil {
		if _, ok := r.profiles[*snap.Current]; ok {
			r.current = *snap.Current
		} else {
			klog.Warningf("snapshot selection %q does not resolve, clearing", *snap.Current)
		}
	}
	return r, nil
}

// Save serializes the registry and writes it to the blob store.
func (r *Registry) Save(ctx context.Context, s store.Store) error {
	data, err := r.Snapshot()
	if err != nil {
		return err
	}

	path, err := s.Resolve(StateBlobName)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.WriteAll(ctx, path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	klog.V(2).Infof("saved %d profiles to %s", r.Len(), path)
	return nil
}

// Load restores a registry from the blob store. A missing blob yields
// a fresh empty registry, not an error.
func Load(ctx context.Context, s store.Store) (*Registry, error) {
	path, err := s.Resolve(StateBlobName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	data, err := s.ReadAll(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return Restore(data)
}
