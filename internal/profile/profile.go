// Package profile defines the connection profile value type and its
// conversions to and from client-go configuration.
package profile

import (
	"slices"
	"time"

	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// DefaultNamespace is used when a profile does not carry one.
const DefaultNamespace = "default"

// Profile describes how to reach and authenticate to one cluster.
// It is a pure value: the registry stores and hands out clones, so
// mutating a Profile held by a caller never affects stored state.
type Profile struct {
	Server    string `json:"server"`
	Namespace string `json:"namespace,omitempty"`

	Username  string `json:"username,omitempty"`
	Password  string `json:"password,omitempty"`
	Token     string `json:"token,omitempty"`
	TokenFile string `json:"tokenFile,omitempty"`

	CAData        []byte `json:"certificateAuthorityData,omitempty"`
	CertData      []byte `json:"clientCertificateData,omitempty"`
	KeyData       []byte `json:"clientKeyData,omitempty"`
	Insecure      bool   `json:"insecureSkipTLSVerify,omitempty"`
	TLSServerName string `json:"tlsServerName,omitempty"`

	// Exec references an exec-based credential plugin. Opaque to the
	// registry; passed through to client construction as-is.
	Exec *clientcmdapi.ExecConfig `json:"exec,omitempty"`

	// ConnectTimeout bounds the connection phase of derived clients.
	// Client derivation overrides it with a fixed policy value.
	ConnectTimeout time.Duration `json:"connectTimeout,omitempty"`
}

// Clone returns an independent deep copy of the profile.
func (p Profile) Clone() Profile {
	c := p
	c.CAData = slices.Clone(p.CAData)
	c.CertData = slices.Clone(p.CertData)
	c.KeyData = slices.Clone(p.KeyData)
	if p.Exec != nil {
		c.Exec = p.Exec.DeepCopy()
	}
	return c
}
