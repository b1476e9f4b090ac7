// Package devicename derives a stable descriptor for the connected device so
// that baselines recorded on different devices can live side by side.
package devicename

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Shell runs a command on the device and returns its trimmed output.
type Shell interface {
	Shell(ctx context.Context, command string) (string, error)
}

// Calculator queries a device for the properties that affect rendering.
type Calculator struct {
	Device Shell
}

var (
	numberRe = regexp.MustCompile(`[0-9]+`)
	sizeRe   = regexp.MustCompile(`[0-9]+x[0-9]+`)
)

// Name returns a descriptor such as API_28_GP_XHDPI_1080x1920_x86_en-US.
func (c *Calculator) Name(ctx context.Context) (string, error) {
	api, err := c.apiLevel(ctx)
	if err != nil {
		return "", err
	}
	density, err := c.density(ctx)
	if err != nil {
		return "", err
	}
	size, err := c.screenSize(ctx)
	if err != nil {
		return "", err
	}
	abi, err := c.prop(ctx, "ro.product.cpu.abi")
	if err != nil {
		return "", err
	}
	locale, err := c.locale(ctx)
	if err != nil {
		return "", err
	}

	parts := []string{
		fmt.Sprintf("API_%d", api),
		c.playServices(ctx),
		DensityBucket(density),
		size,
		abi,
		locale,
	}
	for _, p := range parts {
		if p == "" {
			return "", fmt.Errorf("device reported an empty property; got %q", strings.Join(parts, "_"))
		}
	}
	return strings.Join(parts, "_"), nil
}

// DensityBucket maps a screen density in dpi to its resource qualifier.
func DensityBucket(dpi int) string {
	switch {
	case dpi <= 120:
		return "LDPI"
	case dpi <= 160:
		return "MDPI"
	case dpi <= 240:
		return "HDPI"
	case dpi <= 320:
		return "XHDPI"
	case dpi <= 480:
		return "XXHDPI"
	default:
		return "XXXHDPI"
	}
}

func (c *Calculator) prop(ctx context.Context, name string) (string, error) {
	out, err := c.Device.Shell(ctx, "getprop "+name)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

func (c *Calculator) apiLevel(ctx context.Context) (int, error) {
	v, err := c.prop(ctx, "ro.build.version.sdk")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing API level %q: %w", v, err)
	}
	return n, nil
}

func (c *Calculator) density(ctx context.Context) (int, error) {
	out, err := c.Device.Shell(ctx, "wm density")
	if err != nil {
		return 0, fmt.Errorf("reading screen density: %w", err)
	}
	m := numberRe.FindString(out)
	if m == "" {
		return 0, fmt.Errorf("no screen density in %q", out)
	}
	return strconv.Atoi(m)
}

func (c *Calculator) screenSize(ctx context.Context) (string, error) {
	out, err := c.Device.Shell(ctx, "wm size")
	if err != nil {
		return "", fmt.Errorf("reading screen size: %w", err)
	}
	m := sizeRe.FindString(out)
	if m == "" {
		return "", fmt.Errorf("no screen size in %q", out)
	}
	return m, nil
}

// playServices is GP when the device has Google Play services installed.
// A failed query counts as not installed.
func (c *Calculator) playServices(ctx context.Context) string {
	out, err := c.Device.Shell(ctx, "pm path com.google.android.gms")
	if err != nil || strings.TrimSpace(out) == "" {
		return "NO_GP"
	}
	return "GP"
}

func (c *Calculator) locale(ctx context.Context) (string, error) {
	persist, err := c.prop(ctx, "persist.sys.locale")
	if err != nil {
		return "", err
	}
	if persist != "" {
		return persist, nil
	}
	return c.prop(ctx, "ro.product.locale")
}
