// Package aapt finds the Android Asset Packaging Tool in an SDK and reads
// package names from APKs with it.
package aapt

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Runner executes an external command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// FindBinary returns the aapt binary from the newest build-tools version in
// sdk that has one. Versions compare numerically, so 10.0.0 is newer than
// 9.0.0, and preview directories named android-* rank below every numbered
// release.
func FindBinary(sdk string) (string, error) {
	if sdk == "" {
		return "", fmt.Errorf("no Android SDK configured; set 'sdk' in shotpull.yaml or ANDROID_SDK")
	}
	buildTools := filepath.Join(sdk, "build-tools")
	entries, err := os.ReadDir(buildTools)
	if err != nil {
		return "", fmt.Errorf("could not find build-tools in %s: %w", sdk, err)
	}

	versions := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) > 0
	})

	for _, v := range versions {
		bin := filepath.Join(buildTools, v, "aapt")
		for _, candidate := range []string{bin, bin + ".exe"} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("could not find build-tools in %s", sdk)
}

// compareVersions orders build-tools directory names. It returns a negative
// number when a is older than b, zero when equal, positive when newer.
func compareVersions(a, b string) int {
	aPreview, bPreview := strings.HasPrefix(a, "android"), strings.HasPrefix(b, "android")
	if aPreview != bPreview {
		if aPreview {
			return -1
		}
		return 1
	}

	ap, bp := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(ap) || i < len(bp); i++ {
		var x, y string
		if i < len(ap) {
			x = ap[i]
		}
		if i < len(bp) {
			y = bp[i]
		}
		if c := compareComponent(x, y); c != 0 {
			return c
		}
	}
	return 0
}

// compareComponent compares the leading numbers of two version components,
// then whatever follows them ("0-rc1") as text.
func compareComponent(a, b string) int {
	an, arest := splitNumber(a)
	bn, brest := splitNumber(b)
	if an != bn {
		if an < bn {
			return -1
		}
		return 1
	}
	// A release outranks its pre-releases: "0" > "0-rc1".
	switch {
	case arest == brest:
		return 0
	case arest == "":
		return 1
	case brest == "":
		return -1
	}
	return strings.Compare(arest, brest)
}

func splitNumber(s string) (int, string) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	n, _ := strconv.Atoi(s[:i])
	return n, s[i:]
}

// PackageName runs `aapt dump badging apk` and returns the package name.
func PackageName(ctx context.Context, runner Runner, aaptBin, apk string) (string, error) {
	out, err := runner.Run(ctx, aaptBin, "dump", "badging", apk)
	if err != nil {
		return "", fmt.Errorf("reading package name from %s: %w", apk, err)
	}

	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "package:") {
			continue
		}
		if name := parsePackageLine(line); name != "" {
			return name, nil
		}
	}
	return "", fmt.Errorf("no package name in aapt output for %s", apk)
}

// parsePackageLine extracts the name from a line such as
// package: name='com.example.tests' versionCode='1' versionName=''
func parsePackageLine(line string) string {
	for _, word := range strings.Fields(line) {
		if strings.HasPrefix(word, "name='") && strings.HasSuffix(word, "'") {
			return strings.TrimSuffix(strings.TrimPrefix(word, "name='"), "'")
		}
	}
	return ""
}
