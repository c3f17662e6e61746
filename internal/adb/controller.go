package adb

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const commandTimeout = 10 * time.Second

// Controller drives a single Android device through the adb binary. The
// device address points at the local end of an externally managed SSH
// tunnel, so the controller never deals with the tunnel itself.
type Controller struct {
	mu        sync.Mutex
	path      string
	device    string // "127.0.0.1:port"
	connected bool

	// Settle delay after each tap so the game UI can react. Zero in tests.
	tapSettle time.Duration
}

// NewController creates a controller for the device behind the given local
// port.
func NewController(adbPath string, port int) *Controller {
	return &Controller{
		path:      adbPath,
		device:    fmt.Sprintf("127.0.0.1:%d", port),
		tapSettle: 2 * time.Second,
	}
}

// WithTapSettle overrides the post-tap settle delay.
func (c *Controller) WithTapSettle(d time.Duration) *Controller {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tapSettle = d
	return c
}

// Device returns the adb device address.
func (c *Controller) Device() string {
	return c.device
}

// Connect runs adb connect and verifies the device answered.
func (c *Controller) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	output, err := c.run("connect", c.device)
	if err != nil {
		return fmt.Errorf("failed to connect to device %s: %w", c.device, err)
	}
	if !strings.Contains(output, "connected") {
		return fmt.Errorf("unexpected connect output: %s", output)
	}

	c.connected = true
	return nil
}

// Disconnect runs adb disconnect.
func (c *Controller) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false

	if _, err := c.run("disconnect", c.device); err != nil {
		return fmt.Errorf("failed to disconnect from device %s: %w", c.device, err)
	}
	return nil
}

// IsConnected returns whether Connect succeeded and Disconnect has not run.
func (c *Controller) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Shell runs a shell command on the device and returns its output.
func (c *Controller) Shell(command string) (string, error) {
	args := append([]string{"-s", c.device, "shell"}, strings.Fields(command)...)
	output, err := c.run(args...)
	if err != nil {
		return "", fmt.Errorf("shell command %q failed: %w", command, err)
	}
	return output, nil
}

// run executes the adb binary with a bounded timeout.
func (c *Controller) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.path, args...)
	output, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("adb %s timed out after %s", args[0], commandTimeout)
	}
	if err != nil {
		return "", fmt.Errorf("adb %s: %w, output: %s", args[0], err, output)
	}
	return string(output), nil
}
