package profile

import (
	"fmt"
	"sort"

	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

// ContextInfo holds context metadata from a kubeconfig document
type ContextInfo struct {
	Name      string
	Cluster   string
	User      string
	Namespace string
}

// LoadKubeconfig reads and parses a kubeconfig file
func LoadKubeconfig(path string) (*clientcmdapi.Config, error) {
	doc, err := clientcmd.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return doc, nil
}

// ParseKubeconfig parses kubeconfig bytes
func ParseKubeconfig(data []byte) (*clientcmdapi.Config, error) {
	doc, err := clientcmd.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kubeconfig: %w", err)
	}
	return doc, nil
}

// Contexts extracts all contexts from a kubeconfig document
func Contexts(doc *clientcmdapi.Config) []*ContextInfo {
	contexts := make([]*ContextInfo, 0, len(doc.Contexts))
	for name, ctx := range doc.Contexts {
		contexts = append(contexts, &ContextInfo{
			Name:      name,
			Cluster:   ctx.Cluster,
			User:      ctx.AuthInfo,
			Namespace: ctx.Namespace,
		})
	}

	// Sort alphabetically by name to ensure stable order
	// This prevents position shifts caused by Go map iteration non-determinism
	sort.Slice(contexts, func(i, j int) bool {
		return contexts[i].Name < contexts[j].Name
	})

	return contexts
}
