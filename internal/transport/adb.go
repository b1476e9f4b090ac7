package transport

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bianoble/shotpull/internal/devicepath"
)

// tmpDir is where PullTree stages its archive on the device.
const tmpDir = "/data/local/tmp"

// ADB talks to a device through the Android Debug Bridge.
type ADB struct {
	Binary   string
	Serial   string
	Emulator bool
	USB      bool
	Runner   Runner
}

// NewADB builds an ADB transport. The binary comes from the SDK when one is
// configured and contains it, otherwise adb is looked up on PATH.
func NewADB(opts Options) *ADB {
	runner := opts.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	return &ADB{
		Binary:   FindADB(opts.SDK),
		Serial:   opts.Serial,
		Emulator: opts.Emulator,
		USB:      opts.USB,
		Runner:   runner,
	}
}

// FindADB returns {sdk}/platform-tools/adb if it exists, else "adb".
func FindADB(sdk string) string {
	if sdk == "" {
		return "adb"
	}
	for _, name := range []string{"adb", "adb.exe"} {
		candidate := filepath.Join(sdk, "platform-tools", name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "adb"
}

// Args prefixes args with the device selection flags.
func (a *ADB) Args(args ...string) []string {
	var out []string
	switch {
	case a.Serial != "":
		out = append(out, "-s", a.Serial)
	case a.Emulator:
		out = append(out, "-e")
	case a.USB:
		out = append(out, "-d")
	}
	return append(out, args...)
}

// Command runs adb with the device selection flags applied.
func (a *ADB) Command(ctx context.Context, args ...string) ([]byte, error) {
	return a.Runner.Run(ctx, a.Binary, a.Args(args...)...)
}

// Shell runs command in a device shell and returns its trimmed output.
func (a *ADB) Shell(ctx context.Context, command string) (string, error) {
	out, err := a.Command(ctx, "shell", command)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func (a *ADB) Exists(ctx context.Context, remotePath string) bool {
	out, err := a.Shell(ctx, "test -e "+shellQuote(remotePath)+" && echo EXISTS")
	return err == nil && strings.Contains(out, "EXISTS")
}

func (a *ADB) Pull(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return &TransportError{Op: "pull", Path: remotePath, Err: err}
	}
	if _, err := a.Command(ctx, "pull", remotePath, localPath); err != nil {
		return &TransportError{Op: "pull", Path: remotePath, Err: err}
	}
	return nil
}

// PullTree archives remoteDir on the device, pulls the single archive and
// unpacks it into localDir. One transfer is much faster than one adb pull
// per tile.
func (a *ADB) PullTree(ctx context.Context, remoteDir, localDir string) error {
	archive := devicepath.Join(tmpDir, "shotpull-"+path.Base(path.Clean(remoteDir))+".tar")

	cmd := fmt.Sprintf("tar -cf %s -C %s .", shellQuote(archive), shellQuote(remoteDir))
	if _, err := a.Shell(ctx, cmd); err != nil {
		return &TransportError{Op: "archive", Path: remoteDir, Err: err}
	}
	defer func() {
		_, _ = a.Shell(ctx, "rm -f "+shellQuote(archive))
	}()

	staging, err := os.MkdirTemp("", "shotpull-bundle-*")
	if err != nil {
		return &TransportError{Op: "pull", Path: remoteDir, Err: err}
	}
	defer func() { _ = os.RemoveAll(staging) }()

	local := filepath.Join(staging, "bundle.tar")
	if err := a.Pull(ctx, archive, local); err != nil {
		return err
	}

	f, err := os.Open(local)
	if err != nil {
		return &TransportError{Op: "extract", Path: remoteDir, Err: err}
	}
	defer f.Close()

	if err := ExtractTar(f, localDir); err != nil {
		return &TransportError{Op: "extract", Path: remoteDir, Err: err}
	}
	return nil
}

func (a *ADB) ExternalStorageRoot(ctx context.Context) (string, error) {
	out, err := a.Shell(ctx, "echo $EXTERNAL_STORAGE")
	if err != nil {
		return "", &TransportError{Op: "query", Path: "$EXTERNAL_STORAGE", Err: err}
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", &TransportError{Op: "query", Path: "$EXTERNAL_STORAGE", Err: fmt.Errorf("device reported no external storage")}
	}
	return fields[len(fields)-1], nil
}

// GetProp reads a system property from the device.
func (a *ADB) GetProp(ctx context.Context, name string) (string, error) {
	return a.Shell(ctx, "getprop "+name)
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
