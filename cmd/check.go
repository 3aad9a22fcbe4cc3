package cmd

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/uniform"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var errCheckFailed = errors.New("one or more shaders failed the check")

var builtinTypes = map[string]string{
	uniform.NameTime:       "float",
	uniform.NameResolution: "vec2",
	uniform.NameMouse:      "vec2",
}

var checkCmd = &cobra.Command{
	Use:   "check [fragment...]",
	Short: "Check fragment shaders against the configured uniforms without opening a window",
	Long: `Check scans each fragment shader for uniform declarations and reports the ones that are
neither built in, configured nor annotated with a default, and configured uniforms whose type
differs from the declaration.
Without arguments the shader selected by the config is checked.`,
	RunE: checkShaders,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func checkShaders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	var presets []shader.Preset
	if len(args) == 0 {
		p, err := cfg.Source()
		if err != nil {
			return err
		}
		presets = append(presets, p)
	}
	for _, path := range args {
		p, err := shader.LoadPreset(path, "")
		if err != nil {
			return err
		}
		presets = append(presets, p)
	}

	out := termenv.NewOutput(cmd.OutOrStdout())
	failed := false
	for _, p := range presets {
		uniforms, err := cfg.UniformsFor(p)
		if err != nil {
			return err
		}
		errs := checkPreset(p, uniforms)
		if len(errs) == 0 {
			fmt.Fprintf(out, "%s %s\n", out.String("ok").Foreground(termenv.ANSIGreen), p.Name)
			continue
		}
		failed = true
		fmt.Fprintf(out, "%s %s\n", out.String("FAIL").Foreground(termenv.ANSIRed).Bold(), p.Name)
		for _, err := range errs {
			fmt.Fprintf(out, "    %v\n", err)
		}
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

// checkPreset validates every uniform a preset declares against the configured ones.
//
// Parameters:
//   - p: the preset to check
//   - uniforms: the configured custom uniforms
//
// Returns:
//   - []error: one error per problem found, in declaration order
func checkPreset(p shader.Preset, uniforms map[string]uniform.Uniform) []error {
	var errs []error
	for _, d := range p.Uniforms {
		if uniform.IsBuiltin(d.Name) {
			if want := builtinTypes[d.Name]; d.Type != want {
				errs = append(errs, fmt.Errorf("built-in uniform %q is declared %s but uploaded as %s", d.Name, d.Type, want))
			}
			continue
		}
		u, ok := uniforms[d.Name]
		if !ok {
			errs = append(errs, &uniform.MissingError{Name: d.Name})
			continue
		}
		kind, known := uniform.KindOf(d.Type)
		if !known {
			errs = append(errs, &uniform.UnsupportedKindError{Name: d.Name, Type: d.Type})
			continue
		}
		if kind != u.Kind {
			errs = append(errs, fmt.Errorf("uniform %q is declared %s but configured as %s", d.Name, d.Type, u.Kind))
		}
	}
	return errs
}
