//go:build !js

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Carmen-Shannon/oxy-shader/engine/config"
	"github.com/Carmen-Shannon/oxy-shader/engine/host"
	"github.com/Carmen-Shannon/oxy-shader/engine/renderer"
	"github.com/Carmen-Shannon/oxy-shader/engine/shader"
	"github.com/Carmen-Shannon/oxy-shader/engine/surface"
	"github.com/spf13/cobra"
)

var watch bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Render a shader in a desktop window",
	Args:  cobra.NoArgs,
	RunE:  runShader,
}

func init() {
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the shader when its source files change")
	rootCmd.AddCommand(runCmd)
}

func runShader(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	src, err := cfg.Source()
	if err != nil {
		return err
	}

	win, err := host.NewWindow(
		host.WithTitle(windowTitle(cfg, src)),
		host.WithSize(cfg.Window.Width, cfg.Window.Height),
		host.WithVSync(cfg.Window.VSync),
	)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	opts, err := cfg.Options(src)
	if err != nil {
		return err
	}
	r, err := renderer.NewRenderer(win, opts...)
	if err != nil {
		return err
	}
	s := &session{win: win, cfg: cfg, r: r}
	defer func() { s.r.Dispose() }()

	if watch {
		paths, err := cfg.SourcePaths()
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			slog.Warn("nothing to watch, the built-in shader is in use")
		} else {
			reload := surface.NewCoalescer(win, s.swap)
			stop, err := watchSources(paths, func(name string) {
				slog.Debug("shader source changed", "file", name)
				win.Post(reload.Trigger)
			})
			if err != nil {
				return fmt.Errorf("failed to watch shader sources: %w", err)
			}
			defer stop()
			defer reload.Cancel()
			slog.Info("watching shader sources", "paths", paths)
		}
	}

	win.Run()
	return nil
}

// window is the part of a desktop window a session needs.
type window interface {
	host.Host
	SetTitle(title string)
}

// session owns the renderer shown in a window so it can be replaced when the sources change.
type session struct {
	win window
	cfg config.Config
	r   renderer.Renderer
}

// swap rebuilds the renderer from freshly read sources, carrying the running time over. When the
// new sources fail to compile, the previous renderer is reloaded with its own sources instead.
func (s *session) swap() {
	src, err := s.cfg.Source()
	if err != nil {
		slog.Error("failed to reload shader", "err", err)
		return
	}
	opts, err := s.cfg.Options(src)
	if err != nil {
		slog.Error("failed to reload shader", "err", err)
		return
	}

	elapsed, wasRunning := s.r.Time(), s.r.State() == renderer.StateRunning
	s.r.Dispose()

	next, err := renderer.NewRenderer(s.win, opts...)
	if err != nil {
		slog.Error("failed to reload shader, keeping the previous one", "err", err)
		if err := s.r.Reload(); err != nil {
			slog.Error("failed to restore the previous shader", "err", err)
			return
		}
		next = s.r
	} else {
		s.win.SetTitle(windowTitle(s.cfg, src))
		slog.Info("shader reloaded", "name", src.Name)
	}
	s.r = next

	next.SetTime(elapsed)
	if wasRunning && next.State() != renderer.StateRunning {
		if err := next.Start(); err != nil {
			slog.Error("failed to start shader", "err", err)
		}
	}
}

func windowTitle(cfg config.Config, src shader.Preset) string {
	if src.Name == "" {
		return cfg.Window.Title
	}
	return cfg.Window.Title + " - " + src.Name
}
