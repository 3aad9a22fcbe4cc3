package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-shader/engine/config"
	"github.com/spf13/cobra"
)

var (
	configPath   string
	presetName   string
	fragmentPath string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:           "oxyshader",
	Short:         "Render GLSL fragment shaders on a full-surface quad",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath+")")
	flags.StringVarP(&presetName, "preset", "p", "", "render a preset from the preset directory")
	flags.StringVarP(&fragmentPath, "fragment", "f", "", "render a fragment shader file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.MarkFlagsMutuallyExclusive("preset", "fragment")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies the shader selection flags on top of it.
// A fragment given on the command line is relative to the working directory, not the config.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to load config: %w", err)
	}

	switch {
	case presetName != "":
		cfg.Preset = presetName
	case fragmentPath != "":
		abs, err := filepath.Abs(fragmentPath)
		if err != nil {
			return cfg, err
		}
		cfg.Preset = ""
		cfg.Fragment = abs
		cfg.Vertex = ""
	}
	return cfg, nil
}
