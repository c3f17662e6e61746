package templates

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/lastwar-tools/truckbot/internal/cv"
)

// Registry manages templates loaded from YAML definition files.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]cv.Template
	basePath  string // Root directory for template image files
	cache     *ImageCache
}

// Definition is a template entry in a YAML file.
type Definition struct {
	Name      string     `yaml:"name"`
	Path      string     `yaml:"path"`
	Threshold float64    `yaml:"threshold"`
	Region    *RegionDef `yaml:"region,omitempty"`
}

// RegionDef is an optional search region in a YAML file.
type RegionDef struct {
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
	X2 int `yaml:"x2"`
	Y2 int `yaml:"y2"`
}

// File is the structure of a template YAML file.
type File struct {
	Templates []Definition `yaml:"templates"`
}

// NewRegistry creates a registry rooted at basePath.
func NewRegistry(basePath string) *Registry {
	return &Registry{
		templates: make(map[string]cv.Template),
		basePath:  basePath,
		cache:     NewImageCache(),
	}
}

// LoadFromFile loads template definitions from a YAML file.
func (r *Registry) LoadFromFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to unmarshal template YAML: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, def := range file.Templates {
		if def.Name == "" {
			return fmt.Errorf("template %d: name cannot be empty", i+1)
		}
		if def.Path == "" {
			return fmt.Errorf("template %d (%s): path cannot be empty", i+1, def.Name)
		}

		template := cv.Template{
			Name:      def.Name,
			Path:      filepath.Join(r.basePath, def.Path),
			Threshold: def.Threshold,
		}
		if template.Threshold == 0 {
			template.Threshold = 0.8
		}
		if def.Region != nil {
			region := image.Rect(def.Region.X1, def.Region.Y1, def.Region.X2, def.Region.Y2)
			template.Region = &region
		}

		r.templates[def.Name] = template
	}

	return nil
}

// LoadFromDirectory loads every .yaml/.yml file in a directory.
func (r *Registry) LoadFromDirectory(dirPath string) error {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return fmt.Errorf("failed to read template directory %s: %w", dirPath, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := r.LoadFromFile(filepath.Join(dirPath, entry.Name())); err != nil {
			return fmt.Errorf("file %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// Get retrieves a template by name.
func (r *Registry) Get(name string) (cv.Template, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[name]
	return template, ok
}

// Register adds a template programmatically.
func (r *Registry) Register(template cv.Template) error {
	if template.Name == "" {
		return fmt.Errorf("template name cannot be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[template.Name] = template
	return nil
}

// Has checks whether a template exists.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns all template names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}

// Image returns the template's image, loading and caching it on first use.
func (r *Registry) Image(name string) (*image.RGBA, error) {
	template, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("template %q not found in registry", name)
	}
	return r.cache.Load(template)
}
