package transport

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bianoble/shotpull/internal/sandbox"
)

// Local serves device paths from a directory on the local disk, such as a
// mounted device image or a pulled copy of /sdcard. Remote path /a/b maps to
// {Root}/a/b.
type Local struct {
	Root            string
	ExternalStorage string
}

// NewLocal builds a Local transport. Root is required.
func NewLocal(opts Options) (*Local, error) {
	if opts.Root == "" {
		return nil, fmt.Errorf("local transport requires a root directory")
	}
	ext := opts.ExternalStorage
	if ext == "" {
		ext = "/sdcard"
	}
	return &Local{Root: opts.Root, ExternalStorage: ext}, nil
}

func (l *Local) resolve(remotePath string) (string, error) {
	return sandbox.ValidatePath(l.Root, strings.TrimPrefix(remotePath, "/"))
}

func (l *Local) Exists(ctx context.Context, remotePath string) bool {
	p, err := l.resolve(remotePath)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

func (l *Local) Pull(ctx context.Context, remotePath, localPath string) error {
	p, err := l.resolve(remotePath)
	if err != nil {
		return &TransportError{Op: "pull", Path: remotePath, Err: err}
	}
	if err := sandbox.CopyFile(p, localPath); err != nil {
		return &TransportError{Op: "pull", Path: remotePath, Err: err}
	}
	return nil
}

func (l *Local) PullTree(ctx context.Context, remoteDir, localDir string) error {
	src, err := l.resolve(remoteDir)
	if err != nil {
		return &TransportError{Op: "pull", Path: remoteDir, Err: err}
	}
	err = filepath.WalkDir(src, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		return sandbox.CopyFile(p, filepath.Join(localDir, rel))
	})
	if err != nil {
		return &TransportError{Op: "pull", Path: remoteDir, Err: err}
	}
	return nil
}

func (l *Local) ExternalStorageRoot(ctx context.Context) (string, error) {
	return l.ExternalStorage, nil
}
