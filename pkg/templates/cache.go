package templates

import (
	"image"
	"sync"

	"github.com/lastwar-tools/truckbot/internal/cv"
)

// ImageCache keeps decoded template images in memory so matching does not
// hit the disk every pass.
type ImageCache struct {
	mu     sync.Mutex
	images map[string]*image.RGBA
}

// NewImageCache creates an empty cache.
func NewImageCache() *ImageCache {
	return &ImageCache{images: make(map[string]*image.RGBA)}
}

// Load returns the cached image for a template, reading it from disk on
// first use.
func (c *ImageCache) Load(template cv.Template) (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if img, ok := c.images[template.Name]; ok {
		return img, nil
	}

	img, err := template.LoadImage()
	if err != nil {
		return nil, err
	}
	c.images[template.Name] = img
	return img, nil
}

// Release drops a cached image.
func (c *ImageCache) Release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.images, name)
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
