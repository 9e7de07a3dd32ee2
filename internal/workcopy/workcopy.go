// Package workcopy manages the editable working copy kept next to a
// dictionary file while it is being validated.
package workcopy

import (
	"bytes"
	"crypto/sha512"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Suffix replaces the extension of the original file. The hyphen is U+2011
// so the name never collides with a real dictionary.
const Suffix = ".SE\u2011WLV.xml"

var (
	ErrStaleCopy        = errors.New("a different working copy already exists")
	ErrOriginalModified = errors.New("original file was modified after the working copy was created")
)

// PathFor returns the working copy path for original.
func PathFor(original string) string {
	return strings.TrimSuffix(original, filepath.Ext(original)) + Suffix
}

// IsWorkingCopy reports whether name is a working copy file name.
func IsWorkingCopy(name string) bool {
	return strings.HasSuffix(filepath.Base(name), Suffix)
}

type fingerprint struct {
	length int64
	digest [sha512.Size]byte
}

func fingerprintOf(path string) (fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return fingerprint{}, err
	}
	defer f.Close()
	h := sha512.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return fingerprint{}, fmt.Errorf("hash %s: %w", path, err)
	}
	fp := fingerprint{length: n}
	copy(fp.digest[:], h.Sum(nil))
	return fp, nil
}

// Copy is an open working copy.
type Copy struct {
	Original string
	Path     string

	original fingerprint
	mode     fs.FileMode
}

// Open creates the working copy of original, or reuses an existing one with
// identical content. An existing copy that differs is left alone and
// ErrStaleCopy is returned.
func Open(original string) (*Copy, error) {
	abs, err := filepath.Abs(original)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", original, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat original: %w", err)
	}
	fp, err := fingerprintOf(abs)
	if err != nil {
		return nil, fmt.Errorf("read original: %w", err)
	}
	c := &Copy{Original: abs, Path: PathFor(abs), original: fp, mode: info.Mode().Perm()}

	existing, err := fingerprintOf(c.Path)
	switch {
	case err == nil:
		if existing != fp {
			return nil, fmt.Errorf("%s: %w", filepath.Base(c.Path), ErrStaleCopy)
		}
		return c, nil
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read working copy: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read original: %w", err)
	}
	if err := writeFile(c.Path, data, c.mode); err != nil {
		return nil, fmt.Errorf("create working copy: %w", err)
	}
	return c, nil
}

// Read returns the content of the working copy.
func (c *Copy) Read() ([]byte, error) {
	return os.ReadFile(c.Path)
}

// Write replaces the content of the working copy.
func (c *Copy) Write(data []byte) error {
	if err := writeFile(c.Path, data, c.mode); err != nil {
		return fmt.Errorf("write working copy: %w", err)
	}
	return nil
}

// Modified reports whether the working copy differs from the original.
func (c *Copy) Modified() (bool, error) {
	cur, err := fingerprintOf(c.Path)
	if err != nil {
		return false, fmt.Errorf("read working copy: %w", err)
	}
	orig, err := fingerprintOf(c.Original)
	if err != nil {
		return false, fmt.Errorf("read original: %w", err)
	}
	return cur != orig, nil
}

// Accept copies the working copy over the original. Unless force is set it
// fails with ErrOriginalModified when the original changed since Open.
func (c *Copy) Accept(force bool) error {
	if !force {
		now, err := fingerprintOf(c.Original)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read original: %w", err)
		}
		if err == nil && now != c.original {
			return fmt.Errorf("%s: %w", filepath.Base(c.Original), ErrOriginalModified)
		}
	}
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return fmt.Errorf("read working copy: %w", err)
	}
	if err := writeFile(c.Original, data, c.mode); err != nil {
		return fmt.Errorf("update original: %w", err)
	}
	c.original, err = fingerprintOf(c.Original)
	return err
}

// Reject removes the working copy. Removing a missing copy is not an error.
func (c *Copy) Reject() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove working copy: %w", err)
	}
	return nil
}

// writeFile replaces path atomically through a temporary file in the same
// directory.
func writeFile(path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wlv-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
