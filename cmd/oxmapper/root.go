package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oxmapper/internal/logging"
	"oxmapper/internal/logging/logfields"
	"oxmapper/mapping"
	"oxmapper/store"
)

var log = logging.ForSubsys("cli")

const (
	keyConfig   = "config"
	keyBindings = "bindings"
	keyLogLevel = "log-level"
)

func newRootCommand() *cobra.Command {
	vp := newViper()

	root := &cobra.Command{
		Use:           "oxmapper",
		Short:         "Object/XML binding tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initConfig(cmd, vp)
		},
	}

	flags := root.PersistentFlags()
	flags.String(keyConfig, "", "config file (default is ./.oxmapper.yaml)")
	flags.StringP(keyBindings, "b", "", "YAML bindings file (default is the tags of the store package)")
	flags.String(keyLogLevel, "warn", "log level (debug, info, warn, error)")

	if err := vp.BindPFlags(flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		newCheckCommand(vp),
		newInspectCommand(vp),
		newScaffoldCommand(vp),
		newConvertCommand(vp),
		newSQLCommand(vp),
	)

	return root
}

func newViper() *viper.Viper {
	vp := viper.New()
	vp.SetEnvPrefix("oxmapper")
	vp.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	vp.AutomaticEnv()

	return vp
}

// initConfig reads the config file, binds the flags of the running command
// and applies the log settings.
func initConfig(cmd *cobra.Command, vp *viper.Viper) error {
	if err := vp.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	if cfg := vp.GetString(keyConfig); cfg != "" {
		vp.SetConfigFile(cfg)
	} else {
		vp.SetConfigName(".oxmapper")
		vp.SetConfigType("yaml")
		vp.AddConfigPath(".")
	}

	if err := vp.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	logging.SetOutput(cmd.ErrOrStderr())
	if err := logging.SetLevel(vp.GetString(keyLogLevel)); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	if used := vp.ConfigFileUsed(); used != "" {
		log.WithField(logfields.Path, used).Debug("Using config file")
	}

	return nil
}

// loadBindings reads the configured bindings file, or derives the bindings
// of the store package when none is set.
func loadBindings(vp *viper.Viper) (*mapping.BindingFile, error) {
	path := vp.GetString(keyBindings)
	if path == "" {
		return store.Bindings()
	}

	log.WithField(logfields.BindingFile, path).Debug("Loading bindings")

	return mapping.LoadFile(path)
}

func buildProject(vp *viper.Viper) (*mapping.Project, error) {
	bf, err := loadBindings(vp)
	if err != nil {
		return nil, err
	}

	return mapping.Build(bf, store.Types(), mapping.Converters{})
}
