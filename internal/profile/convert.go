package profile

import (
	"errors"
	"fmt"
	"slices"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// ErrKubeconfigParse indicates a kubeconfig document could not be
// converted into a usable profile.
var ErrKubeconfigParse = errors.New("kubeconfig conversion failed")

// Options selects how a kubeconfig document is converted.
type Options struct {
	// Context picks a named context; empty means the document's
	// current-context.
	Context string
}

// FromRest converts a client library config into a profile. Transport
// and dial overrides on the config are not representable and are
// dropped; the namespace defaults because rest.Config does not carry
// one.
func FromRest(cfg *rest.Config) Profile {
	p := Profile{
		Server:         cfg.Host,
		Namespace:      DefaultNamespace,
		Username:       cfg.Username,
		Password:       cfg.Password,
		Token:          cfg.BearerToken,
		TokenFile:      cfg.BearerTokenFile,
		CAData:         slices.Clone(cfg.TLSClientConfig.CAData),
		CertData:       slices.Clone(cfg.TLSClientConfig.CertData),
		KeyData:        slices.Clone(cfg.TLSClientConfig.KeyData),
		Insecure:       cfg.TLSClientConfig.Insecure,
		TLSServerName:  cfg.TLSClientConfig.ServerName,
		ConnectTimeout: cfg.Timeout,
	}
	if cfg.ExecProvider != nil {
		p.Exec = cfg.ExecProvider.DeepCopy()
	}
	return p
}

// RestConfig converts the profile back into a client library config.
func (p Profile) RestConfig() *rest.Config {
	cfg := &rest.Config{
		Host:            p.Server,
		Username:        p.Username,
		Password:        p.Password,
		BearerToken:     p.Token,
		BearerTokenFile: p.TokenFile,
		TLSClientConfig: rest.TLSClientConfig{
			CAData:     slices.Clone(p.CAData),
			CertData:   slices.Clone(p.CertData),
			KeyData:    slices.Clone(p.KeyData),
			Insecure:   p.Insecure,
			ServerName: p.TLSServerName,
		},
		Timeout: p.ConnectTimeout,
	}
	if p.Exec != nil {
		cfg.ExecProvider = p.Exec.DeepCopy()
	}
	return cfg
}

// FromKubeconfig converts a parsed kubeconfig document into a profile
// using the selected (or current) context. Failures are reported as
// ErrKubeconfigParse.
func FromKubeconfig(doc *clientcmdapi.Config, opts Options) (Profile, error) {
	cc := clientcmd.NewNonInteractiveClientConfig(*doc, opts.Context, &clientcmd.ConfigOverrides{}, nil)

	cfg, err := cc.ClientConfig()
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrKubeconfigParse, err)
	}

	p := FromRest(cfg)
	if ns, _, err := cc.Namespace(); err == nil && ns != "" {
		p.Namespace = ns
	}
	return p, nil
}

// InferAmbient derives a profile from the local execution environment:
// the default kubeconfig loading rules, falling back to in-cluster
// service-account credentials when no kubeconfig is reachable.
func InferAmbient() (Profile, error) {
	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	cc := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, &clientcmd.ConfigOverrides{})

	cfg, err := cc.ClientConfig()
	if err != nil {
		return Profile{}, fmt.Errorf("inferring ambient config: %w", err)
	}

	p := FromRest(cfg)
	if ns, _, err := cc.Namespace(); err == nil && ns != "" {
		p.Namespace = ns
	}
	return p, nil
}
