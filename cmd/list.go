package cmd

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/trace"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var listWorkers int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shader presets in the preset directory",
	Args:  cobra.NoArgs,
	RunE:  listPresets,
}

func init() {
	listCmd.Flags().IntVarP(&listWorkers, "workers", "w", 0, "number of files read in parallel (default GOMAXPROCS)")
	rootCmd.AddCommand(listCmd)
}

func listPresets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dir, err := cfg.PresetDir()
	if err != nil {
		return err
	}

	presets, err := shader.LoadLibrary(dir, listWorkers)
	out := termenv.NewOutput(cmd.OutOrStdout())
	if len(presets) == 0 {
		fmt.Fprintf(out, "No presets in %s\n", dir)
		return err
	}

	fmt.Fprintf(out, "Presets in %s:\n", dir)
	for _, p := range presets {
		name := out.String(p.Name).Foreground(out.Color(trace.Color(p.Name))).Bold()
		uniforms := make([]string, 0, len(p.Uniforms))
		for _, u := range p.Uniforms {
			uniforms = append(uniforms, u.Type+" "+u.Name)
		}
		fmt.Fprintf(out, "  %s  %s\n", name, strings.Join(uniforms, ", "))
	}
	return err
}
