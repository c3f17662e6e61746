package adb

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

const deviceScreenshotPath = "/sdcard/truckbot_screen.png"

// Capture takes a screenshot on the device, pulls it to a temp file and
// decodes it as RGBA.
func (c *Controller) Capture() (*image.RGBA, error) {
	if _, err := c.Shell(fmt.Sprintf("screencap -p %s", deviceScreenshotPath)); err != nil {
		return nil, fmt.Errorf("screencap failed: %w", err)
	}

	localPath := filepath.Join(os.TempDir(), fmt.Sprintf("truckbot_%s.png", c.device))
	if _, err := c.run("-s", c.device, "pull", deviceScreenshotPath, localPath); err != nil {
		return nil, fmt.Errorf("failed to pull screenshot: %w", err)
	}
	defer os.Remove(localPath)

	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}

// Tap taps the screen and waits out the settle delay.
func (c *Controller) Tap(x, y int) error {
	if _, err := c.Shell(fmt.Sprintf("input tap %d %d", x, y)); err != nil {
		return fmt.Errorf("tap at (%d,%d) failed: %w", x, y, err)
	}
	if c.tapSettle > 0 {
		time.Sleep(c.tapSettle)
	}
	return nil
}

// Swipe performs a swipe gesture over durationMS milliseconds.
func (c *Controller) Swipe(x1, y1, x2, y2, durationMS int) error {
	if _, err := c.Shell(fmt.Sprintf("input swipe %d %d %d %d %d", x1, y1, x2, y2, durationMS)); err != nil {
		return fmt.Errorf("swipe (%d,%d)->(%d,%d) failed: %w", x1, y1, x2, y2, err)
	}
	return nil
}
