package engine

import (
	"context"
	"fmt"

	"github.com/bianoble/shotpull/internal/aapt"
)

// ResolvePackage returns pkg, or the package name read from apk with the
// SDK's aapt when pkg is empty.
func ResolvePackage(ctx context.Context, runner aapt.Runner, sdk, pkg, apk string) (string, error) {
	if pkg != "" || apk == "" {
		return pkg, nil
	}
	bin, err := aapt.FindBinary(sdk)
	if err != nil {
		return "", err
	}
	name, err := aapt.PackageName(ctx, runner, bin, apk)
	if err != nil {
		return "", fmt.Errorf("resolving package: %w", err)
	}
	return name, nil
}
