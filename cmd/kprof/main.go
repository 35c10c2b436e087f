package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/rmarques/kprof/internal/commands"
	"github.com/rmarques/kprof/internal/logging"
	"github.com/rmarques/kprof/internal/registry"
	"github.com/rmarques/kprof/internal/store"
)

func main() {
	// Suppress klog noise from client-go; only fatal errors surface
	klog.InitFlags(nil)
	flag.Set("logtostderr", "false")
	flag.Set("stderrthreshold", "FATAL")
	defer klog.Flush()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "kprof",
		Short:        "kprof - named cluster connection profiles",
		Long:         "Registry of named cluster connection profiles: register profiles from kubeconfig files or the ambient environment, select one as current, and derive API clients from it.",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("state-dir", "", "Directory holding profile state (overrides KPROF_STATE_DIR; default: user config dir)")
	root.PersistentFlags().String("log-file", "", "Write a debug log to this file (overrides KPROF_LOG_FILE; empty disables logging)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")

	// Precedence: flag > env > default
	viper.SetEnvPrefix("KPROF")
	viper.BindEnv("state_dir")
	viper.BindEnv("log_file")
	viper.BindPFlag("state_dir", root.PersistentFlags().Lookup("state-dir"))
	viper.BindPFlag("log_file", root.PersistentFlags().Lookup("log-file"))
	viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.PersistentPreRunE = func(*cobra.Command, []string) error {
		return logging.Init(logging.Config{
			FilePath:   viper.GetString("log_file"),
			Level:      logging.ParseLevel(viper.GetString("log_level")),
			MaxSizeMB:  10,
			MaxBackups: 2,
		})
	}

	// One subcommand per dispatcher command; the dispatcher owns
	// argument validation and persistence.
	for _, c := range commands.All() {
		use := c.Name
		if c.ArgPattern != "" {
			use = c.Name + " " + c.ArgPattern
		}
		name := c.Name
		root.AddCommand(&cobra.Command{
			Use:   use,
			Short: c.Description,
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				d, err := newDispatcher()
				if err != nil {
					return err
				}
				out, err := d.Dispatch(cmd.Context(), name, args)
				if err != nil {
					return err
				}
				if strings.TrimSpace(out) != "" {
					fmt.Fprintln(cmd.OutOrStdout(), out)
				}
				return nil
			},
		})
	}

	return root
}

func newDispatcher() (*commands.Dispatcher, error) {
	dir := viper.GetString("state_dir")
	if dir == "" {
		var err error
		dir, err = store.DefaultRoot()
		if err != nil {
			return nil, err
		}
	}

	st := store.NewFileStore(dir)
	reg, err := registry.Load(context.Background(), st)
	if err != nil {
		return nil, err
	}
	return commands.NewDispatcher(reg, st), nil
}
