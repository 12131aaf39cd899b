// Package virtual keeps generated modules in memory so they resolve like
// files on disk without touching the source tree.
package virtual

import (
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"i18nc-go/packages/i18nc/manifest"
	"i18nc-go/packages/i18nc/output"
)

// Writer is the host's virtual file mechanism
type Writer interface {
	// WriteModule stores source at path and reports whether the stored
	// content changed
	WriteModule(path, source string) bool
}

// LoaderPath returns where a component directory's translation factory lives
func LoaderPath(componentDir string) string {
	return filepath.Join(componentDir, manifest.DirectoryName, output.LoaderFileName)
}

// Registrar forwards generated loader modules to a Writer
type Registrar struct {
	writer Writer
	logger *zap.Logger
}

// NewRegistrar creates a Registrar writing into w
func NewRegistrar(w Writer, logger *zap.Logger) *Registrar {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registrar{writer: w, logger: logger}
}

// Register writes source as componentDir's translation factory and returns
// the module path
func (r *Registrar) Register(componentDir, source string) string {
	path := LoaderPath(componentDir)
	if r.writer.WriteModule(path, source) {
		r.logger.Debug("registered virtual module", zap.String("path", path))
	}
	return path
}

// Registry is an in-memory Writer. It outlives individual builds so that
// watch-mode rebuilds overwrite or keep earlier modules; Remove drops a
// module that a rebuild no longer registers.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]string
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]string)}
}

// WriteModule implements Writer. Writing identical content is a no-op.
func (r *Registry) WriteModule(path, source string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.modules[path]; ok && existing == source {
		return false
	}
	r.modules[path] = source
	return true
}

// Read returns the module stored at path
func (r *Registry) Read(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	source, ok := r.modules[path]
	return source, ok
}

// Paths returns every registered path, sorted
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	paths := make([]string, 0, len(r.modules))
	for p := range r.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Len returns the number of registered modules
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Remove drops the module at path
func (r *Registry) Remove(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modules, path)
}
