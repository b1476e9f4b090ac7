package transport

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/bianoble/shotpull/internal/sandbox"
)

// ExtractTar unpacks regular files and directories from r into dir.
// Entries that would land outside dir are rejected; links and devices are
// skipped.
func ExtractTar(r io.Reader, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		name := strings.TrimPrefix(path.Clean(hdr.Name), "./")
		if name == "." || name == "" {
			continue
		}

		target, err := sandbox.ValidatePath(dir, name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
		case tar.TypeReg:
			err := sandbox.WriteAtomic(target, 0644, func(w io.Writer) error {
				_, err := io.Copy(w, tr)
				return err
			})
			if err != nil {
				return fmt.Errorf("extracting %s: %w", name, err)
			}
		}
	}
}
