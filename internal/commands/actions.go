package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/yaml"

	"github.com/rmarques/kprof/internal/profile"
	"github.com/rmarques/kprof/internal/registry"
)

// listCommand renders all profiles, one per line, with the current
// selection marked.
func listCommand(_ context.Context, reg *registry.Registry, _ []string) (string, error) {
	profiles := reg.List()
	if len(profiles) == 0 {
		return "no profiles registered", nil
	}

	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	// Stable order for display; the registry itself is unordered
	sort.Strings(names)

	current, _, _ := reg.Current()
	var b strings.Builder
	for _, name := range names {
		marker := " "
		if name == current {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %s\t%s\t%s\n", marker, name, profiles[name].Server, profiles[name].Namespace)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// currentCommand shows the current selection name and server.
func currentCommand(_ context.Context, reg *registry.Registry, _ []string) (string, error) {
	name, p, ok := reg.Current()
	if !ok {
		return "no profile selected", nil
	}
	return fmt.Sprintf("%s\t%s", name, p.Server), nil
}

// getCommand renders one profile as YAML.
func getCommand(_ context.Context, reg *registry.Registry, args []string) (string, error) {
	p, ok := reg.Get(args[0])
	if !ok {
		return "", fmt.Errorf("%w: %q", registry.ErrUnknownProfile, args[0])
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("rendering profile: %w", err)
	}
	return string(data), nil
}

// useCommand selects a profile.
func useCommand(_ context.Context, reg *registry.Registry, args []string) (string, error) {
	p, err := reg.SetCurrent(args[0])
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("switched to %q (%s)", args[0], p.Server), nil
}

// unsetCommand clears the selection. It never fails.
func unsetCommand(_ context.Context, reg *registry.Registry, _ []string) (string, error) {
	reg.ClearCurrent()
	return "selection cleared", nil
}

// addCommand registers a profile from one context of a kubeconfig
// file. Without an explicit context the file's current-context is
// used.
func addCommand(ctx context.Context, reg *registry.Registry, args []string) (string, error) {
	doc, err := profile.LoadKubeconfig(args[1])
	if err != nil {
		return "", err
	}

	opts := profile.Options{}
	if len(args) > 2 {
		opts.Context = args[2]
	}

	p, err := reg.PutKubeconfig(ctx, args[0], doc, opts)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("registered %q (%s)", args[0], p.Server), nil
}

// importCommand registers every context of a kubeconfig file under
// its context name. Contexts that fail conversion are skipped and
// reported.
func importCommand(ctx context.Context, reg *registry.Registry, args []string) (string, error) {
	doc, err := profile.LoadKubeconfig(args[0])
	if err != nil {
		return "", err
	}

	var b strings.Builder
	imported := 0
	for _, info := range profile.Contexts(doc) {
		if _, err := reg.PutKubeconfig(ctx, info.Name, doc, profile.Options{Context: info.Name}); err != nil {
			fmt.Fprintf(&b, "skipped %q: %v\n", info.Name, err)
			continue
		}
		imported++
	}
	fmt.Fprintf(&b, "imported %d context(s)", imported)
	return b.String(), nil
}

// removeCommand removes a profile. Removing an absent name succeeds.
func removeCommand(_ context.Context, reg *registry.Registry, args []string) (string, error) {
	reg.Remove(args[0])
	return fmt.Sprintf("removed %q", args[0]), nil
}

// defaultCommand registers the ambient environment under "default".
func defaultCommand(ctx context.Context, reg *registry.Registry, _ []string) (string, error) {
	p, ok := reg.RegisterDefault(ctx)
	if !ok {
		return "no ambient configuration found", nil
	}
	return fmt.Sprintf("registered %q (%s)", registry.DefaultProfileName, p.Server), nil
}

// pingCommand derives a client for the named profile (or the current
// selection) and probes the API server version.
func pingCommand(ctx context.Context, reg *registry.Registry, args []string) (string, error) {
	var client kubernetes.Interface
	var err error
	if len(args) > 0 {
		client, err = reg.ClientFor(ctx, args[0])
	} else {
		client, err = reg.Client(ctx)
	}
	if err != nil {
		return "", err
	}

	version, err := client.Discovery().ServerVersion()
	if err != nil {
		return "", fmt.Errorf("probing API server: %w", err)
	}
	return fmt.Sprintf("server version %s", version.GitVersion), nil
}
