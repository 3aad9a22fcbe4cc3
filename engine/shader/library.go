package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// FragmentExtensions are the file extensions recognized as fragment sources in a preset library.
var FragmentExtensions = []string{".frag", ".fs", ".glsl"}

// VertexExtensions are the file extensions recognized as vertex sources in a preset library.
var VertexExtensions = []string{".vert", ".vs"}

// Preset is a named shader pair loaded from disk.
type Preset struct {
	// Name is the file stem shared by the preset's sources.
	Name string

	// FragmentPath is the file the fragment source was read from.
	FragmentPath string

	// VertexPath is the file the vertex source was read from, or "" when the default is used.
	VertexPath string

	Fragment string
	Vertex   string

	// Uniforms are the uniforms declared by the processed fragment source.
	Uniforms []Declaration

	// Annotations are the @oxy:uniform annotations of both sources, carrying default values.
	Annotations []Annotation
}

// LoadPreset reads a fragment source and an optional vertex source into a Preset.
// When vertexPath is empty the preset uses DefaultVertex. Both sources are run through a
// PreProcessor that includes files relative to the fragment source's directory.
//
// Parameters:
//   - fragmentPath: path to the fragment source
//   - vertexPath: path to the vertex source, or ""
//
// Returns:
//   - Preset: the loaded preset
//   - error: an error if either file cannot be read or processed
func LoadPreset(fragmentPath, vertexPath string) (Preset, error) {
	frag, err := os.ReadFile(fragmentPath)
	if err != nil {
		return Preset{}, fmt.Errorf("failed to read fragment shader: %w", err)
	}
	pp := NewPreProcessor(WithIncludeFS(os.DirFS(filepath.Dir(fragmentPath))))
	fragSrc, err := pp.Process(string(frag))
	if err != nil {
		return Preset{}, fmt.Errorf("failed to process fragment shader %s: %w", fragmentPath, err)
	}

	p := Preset{
		Name:         stem(fragmentPath),
		FragmentPath: fragmentPath,
		Fragment:     fragSrc,
		Vertex:       DefaultVertex,
		Uniforms:     ScanUniforms(fragSrc),
		Annotations:  slices.Clone(pp.Declarations()),
	}
	if vertexPath != "" {
		vert, err := os.ReadFile(vertexPath)
		if err != nil {
			return Preset{}, fmt.Errorf("failed to read vertex shader: %w", err)
		}
		vertSrc, err := pp.Process(string(vert))
		if err != nil {
			return Preset{}, fmt.Errorf("failed to process vertex shader %s: %w", vertexPath, err)
		}
		p.VertexPath = vertexPath
		p.Vertex = vertSrc
		p.Annotations = append(p.Annotations, pp.Declarations()...)
	}
	return p, nil
}

// LoadLibrary loads every preset in a directory. A preset is a fragment source file, paired with the
// vertex source of the same stem when one exists. Files are read concurrently on a worker pool and
// the result is sorted by name. Presets that fail to load are skipped and their errors joined.
//
// Parameters:
//   - dir: the library directory
//   - workers: the maximum number of concurrent readers; <= 0 uses GOMAXPROCS
//
// Returns:
//   - []Preset: the loaded presets
//   - error: the joined load errors, or an error if the directory cannot be listed
func LoadLibrary(dir string, workers int) ([]Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset library: %w", err)
	}

	fragments := make(map[string]string)
	vertices := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		path := filepath.Join(dir, e.Name())
		switch {
		case slices.Contains(FragmentExtensions, ext):
			fragments[stem(path)] = path
		case slices.Contains(VertexExtensions, ext):
			vertices[stem(path)] = path
		}
	}
	if len(fragments) == 0 {
		return nil, nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	pool := worker.NewDynamicWorkerPool(min(workers, len(fragments)), 256, time.Second)
	defer pool.Stop()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		presets []Preset
		errs    []error
	)
	id := 0
	for name, fragPath := range fragments {
		wg.Add(1)
		vertPath := vertices[name]
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				p, err := LoadPreset(fragPath, vertPath)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, fmt.Errorf("preset %s: %w", name, err))
					return nil, err
				}
				presets = append(presets, p)
				return p, nil
			},
		})
		id++
	}
	wg.Wait()

	slices.SortFunc(presets, func(a, b Preset) int {
		return strings.Compare(a.Name, b.Name)
	})
	return presets, errors.Join(errs...)
}

// Find returns the preset with the given name.
func Find(presets []Preset, name string) (Preset, bool) {
	i := slices.IndexFunc(presets, func(p Preset) bool { return p.Name == name })
	if i < 0 {
		return Preset{}, false
	}
	return presets[i], true
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
