package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/rest"
)

// captureBuilder records the rest config handed to client
// construction and returns a fake clientset
func captureBuilder(captured **rest.Config) func(context.Context, *rest.Config) (kubernetes.Interface, error) {
	return func(_ context.Context, cfg *rest.Config) (kubernetes.Interface, error) {
		*captured = cfg
		return fake.NewClientset(), nil
	}
}

func TestClientWithoutSelection(t *testing.T) {
	reg := New()

	_, err := reg.Client(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClientUsesCurrentSelection(t *testing.T) {
	reg := New()
	var captured *rest.Config
	reg.SetClientBuilder(captureBuilder(&captured))

	reg.Put("a", testProfile("https://a"))
	reg.Put("b", testProfile("https://b"))
	_, err := reg.SetCurrent("b")
	require.NoError(t, err)

	client, err := reg.Client(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)

	require.NotNil(t, captured)
	assert.Equal(t, "https://b", captured.Host)
}

func TestClientForResolvesByName(t *testing.T) {
	reg := New()
	var captured *rest.Config
	reg.SetClientBuilder(captureBuilder(&captured))

	reg.Put("a", testProfile("https://a"))

	client, err := reg.ClientFor(context.Background(), "a")
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "https://a", captured.Host)
}

func TestClientForUnknownName(t *testing.T) {
	reg := New()

	_, err := reg.ClientFor(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrUnknownProfile)
}

func TestClientConnectionIsBounded(t *testing.T) {
	reg := New()
	var captured *rest.Config
	reg.SetClientBuilder(captureBuilder(&captured))

	p := testProfile("https://a")
	p.ConnectTimeout = 0 // profile specifies no bound at all
	reg.Put("a", p)

	_, err := reg.ClientFor(context.Background(), "a")
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.NotNil(t, captured.Dial, "derived clients must carry a bounded dialer")
	assert.Zero(t, captured.Timeout, "request timeout stays with the caller")
}

func TestClientConstructionFailure(t *testing.T) {
	reg := New()
	cause := errors.New("bad CA bundle")
	reg.SetClientBuilder(func(context.Context, *rest.Config) (kubernetes.Interface, error) {
		return nil, cause
	})

	reg.Put("a", testProfile("https://a"))
	_, err := reg.SetCurrent("a")
	require.NoError(t, err)

	_, err = reg.Client(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConnect, "construction failure is distinguishable from a missing selection")
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotConfigured)
}
