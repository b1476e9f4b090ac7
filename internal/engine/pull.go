package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bianoble/shotpull/internal/devicepath"
	"github.com/bianoble/shotpull/internal/manifest"
	"github.com/bianoble/shotpull/internal/sandbox"
	"github.com/bianoble/shotpull/internal/tiles"
	"github.com/bianoble/shotpull/internal/transport"
)

// legacyRoot held screenshots in the app's private data directory before
// they moved to external storage.
const legacyRoot = "/data/data"

// PullEngine copies a run's manifest and screenshots off the device.
type PullEngine struct {
	Transport transport.Transport
	Logger    *slog.Logger
}

// PullOptions configures a pull operation.
type PullOptions struct {
	Package         string
	WorkDir         string
	FilterNameRegex string

	// Bundle pulls the whole remote directory in one transfer instead of
	// one file at a time.
	Bundle bool
}

// RemoteManifestCandidates lists where a run's manifest may live on the
// device, in lookup order.
func RemoteManifestCandidates(externalStorage, pkg string) []string {
	current := devicepath.Join(externalStorage, "screenshots", pkg, "screenshots-default")
	return []string{
		devicepath.Join(current, manifest.FormatJSON.FileName()),
		devicepath.Join(current, manifest.FormatXML.FileName()),
		devicepath.Join(legacyRoot, pkg, "app_screenshots-default", manifest.FormatXML.FileName()),
	}
}

// Pull locates the manifest on the device, filters it and pulls the files
// the remaining entries reference into opts.WorkDir.
func (e *PullEngine) Pull(ctx context.Context, opts PullOptions) (*PullResult, error) {
	log := loggerOr(e.Logger)

	if err := os.MkdirAll(opts.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	result := &PullResult{WorkDir: opts.WorkDir}

	ext, err := e.Transport.ExternalStorageRoot(ctx)
	if err != nil {
		return nil, err
	}

	remoteManifest := ""
	for _, candidate := range RemoteManifestCandidates(ext, opts.Package) {
		if e.Transport.Exists(ctx, candidate) {
			remoteManifest = candidate
			break
		}
		log.Debug("no manifest", "path", candidate)
	}

	if remoteManifest == "" {
		result.ManifestPath = filepath.Join(opts.WorkDir, manifest.FormatXML.FileName())
		log.Info("device has no screenshots; writing an empty manifest", "package", opts.Package)
		if err := manifest.WriteEmpty(result.ManifestPath, manifest.FormatXML); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.RemoteDir = path.Dir(remoteManifest)
	result.ManifestPath = filepath.Join(opts.WorkDir, path.Base(remoteManifest))
	log.Info("found manifest", "path", remoteManifest)

	if opts.Bundle {
		if err := e.Transport.PullTree(ctx, result.RemoteDir, opts.WorkDir); err != nil {
			return nil, err
		}
	} else if err := e.Transport.Pull(ctx, remoteManifest, result.ManifestPath); err != nil {
		return nil, err
	}

	// Fail early with the run-completion hint rather than on the filter.
	if _, err := manifest.Load(result.ManifestPath); err != nil {
		return nil, err
	}

	count, err := manifest.Filter(result.ManifestPath, opts.FilterNameRegex)
	if err != nil {
		return nil, err
	}
	result.Screenshots = count
	log.Info("manifest filtered", "screenshots", count, "pattern", opts.FilterNameRegex)

	if opts.Bundle {
		return result, nil
	}

	m, err := manifest.Load(result.ManifestPath)
	if err != nil {
		return nil, err
	}
	for _, s := range m.Screenshots {
		for _, rel := range remoteFiles(s) {
			local, err := e.pullOne(ctx, result.RemoteDir, rel, opts.WorkDir)
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, local)
		}
	}
	log.Info("pulled files", "count", len(result.Files))

	return result, nil
}

// remoteFiles lists what to pull for s, relative to the manifest directory:
// the image files the manifest names, or the tile naming convention when it
// names none, then the view hierarchy and accessibility dumps.
func remoteFiles(s manifest.Screenshot) []string {
	var files []string
	switch {
	case len(s.RelativeFileNames) > 0:
		for _, name := range s.RelativeFileNames {
			files = append(files, imageFileName(name))
		}
	case s.HasImage():
		files = append(files, tiles.FileNames(s)...)
	}
	if s.ViewHierarchy != "" {
		files = append(files, s.ViewHierarchy)
	}
	if s.AxIssues != "" {
		files = append(files, s.AxIssues)
	}
	return files
}

// imageFileName adds the .png suffix the on-device writer leaves off the
// tile names it lists in the manifest. Unusable names are returned as-is so
// pullOne rejects them.
func imageFileName(name string) string {
	if sandbox.ValidateName(path.Base(name)) != nil || strings.HasSuffix(strings.ToLower(name), ".png") {
		return name
	}
	return name + ".png"
}

func (e *PullEngine) pullOne(ctx context.Context, remoteDir, rel, workDir string) (string, error) {
	base := path.Base(rel)
	if err := sandbox.ValidateName(base); err != nil {
		return "", fmt.Errorf("refusing to pull %s: %w", rel, err)
	}
	local := filepath.Join(workDir, base)
	loggerOr(e.Logger).Debug("pull", "remote", rel, "local", local)
	if err := e.Transport.Pull(ctx, devicepath.Join(remoteDir, rel), local); err != nil {
		return "", err
	}
	return local, nil
}
