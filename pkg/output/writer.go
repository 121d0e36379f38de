package output

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/otuschhoff/pwcombo"
)

var (
	// ErrPermissionDenied classifies failures caused by access rights.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIO classifies every other open, write or close failure.
	ErrIO = errors.New("i/o failure")

	// ErrUnsupportedEncoding is returned for encodings other than UTF-8.
	ErrUnsupportedEncoding = errors.New("unsupported encoding")
)

// checkInterval is how many lines are written between context checks.
const checkInterval = 4096

// WriteError describes a failed write of the password file.
type WriteError struct {
	Path string // Destination path
	Op   string // "open", "write" or "close"
	Err  error  // Underlying cause
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot %s output file %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Is matches ErrPermissionDenied when the cause is fs.ErrPermission and ErrIO
// otherwise.
func (e *WriteError) Is(target error) bool {
	switch target {
	case ErrPermissionDenied:
		return errors.Is(e.Err, fs.ErrPermission)
	case ErrIO:
		return !errors.Is(e.Err, fs.ErrPermission)
	}
	return false
}

// WriterConfig holds the settings applied when saving passwords.
type WriterConfig struct {
	Encoding string      // Text encoding, only "utf-8" is supported
	FileMode os.FileMode // Permissions for newly created files
}

// DefaultWriterConfig returns UTF-8 output with 0644 file permissions.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		Encoding: "utf-8",
		FileMode: 0644,
	}
}

// Validate checks that the configuration can be used for writing.
func (c WriterConfig) Validate() error {
	switch strings.ToLower(strings.ReplaceAll(c.Encoding, "_", "-")) {
	case "utf-8", "utf8":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedEncoding, c.Encoding)
	}
}

// openFunc opens a destination for writing.
type openFunc func(name string, flag int, perm os.FileMode) (io.WriteCloser, error)

func openFile(name string, flag int, perm os.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(name, flag, perm)
}

// Writer saves password sets to files, one entry per line in sorted order.
type Writer struct {
	cfg  WriterConfig
	open openFunc
}

// NewWriter creates a Writer with the given configuration.
func NewWriter(cfg WriterConfig) *Writer {
	return &Writer{
		cfg:  cfg,
		open: openFile,
	}
}

// SavePasswords writes passwords to destination using the default
// configuration and returns the number of entries written.
func SavePasswords(passwords pwcombo.Set, destination string) (int, error) {
	return NewWriter(DefaultWriterConfig()).Save(passwords, destination)
}

// Save truncates destination and writes every password in ascending order,
// each followed by a newline. The file is closed on every path. On failure
// the returned error is a *WriteError and the count is zero.
func (w *Writer) Save(passwords pwcombo.Set, destination string) (int, error) {
	return w.SaveContext(context.Background(), passwords, destination)
}

// SaveContext is Save with cancellation. The context is checked before the
// destination is opened and every checkInterval lines; a cancelled context
// yields ctx.Err(), unwrapped, and may leave a partial file.
func (w *Writer) SaveContext(ctx context.Context, passwords pwcombo.Set, destination string) (count int, err error) {
	if err := w.cfg.Validate(); err != nil {
		return 0, err
	}

	sorted := passwords.Sorted()
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := w.open(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, w.cfg.FileMode)
	if err != nil {
		return 0, &WriteError{Path: destination, Op: "open", Err: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			count, err = 0, &WriteError{Path: destination, Op: "close", Err: cerr}
		}
	}()

	bw := bufio.NewWriter(f)
	for i, pw := range sorted {
		if i > 0 && i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
		}
		if _, err := bw.WriteString(pw); err != nil {
			return 0, &WriteError{Path: destination, Op: "write", Err: err}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return 0, &WriteError{Path: destination, Op: "write", Err: err}
		}
		count++
	}
	if err := bw.Flush(); err != nil {
		return 0, &WriteError{Path: destination, Op: "write", Err: err}
	}
	return count, nil
}
