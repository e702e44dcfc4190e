package uasset

import (
	_ "crypto/sha256" // registers the canonical digest algorithm
	"fmt"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ContainerEntry locates one file inside a container.
type ContainerEntry struct {
	Name   string
	Offset int64
	Size   int64
	// Digest is verified when set.
	Digest digest.Digest
}

// Container is a store that bundles many package files, such as a bundle
// archive or a game's pak files.
type Container interface {
	Lookup(name string) (ContainerEntry, bool)
	ReadEntry(entry ContainerEntry) ([]byte, error)
}

// DecodeFromContainer decodes the package name, with or without its
// .uasset extension, pairing it with name.uexp when the container has
// one.
func DecodeFromContainer(c Container, name string, opts ...Option) (*Asset, error) {
	name = strings.TrimSuffix(name, ".uasset")
	entry, ok := c.Lookup(name + ".uasset")
	if !ok {
		return nil, fmt.Errorf("%w: %s.uasset", ErrNotFound, name)
	}
	data, err := readVerified(c, entry)
	if err != nil {
		return nil, err
	}
	if uexp, ok := c.Lookup(name + ".uexp"); ok {
		exportData, err := readVerified(c, uexp)
		if err != nil {
			return nil, err
		}
		opts = append(opts[:len(opts):len(opts)], WithExportData(exportData))
	}
	a, err := Decode(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name, err)
	}
	return a, nil
}

func readVerified(c Container, entry ContainerEntry) ([]byte, error) {
	data, err := c.ReadEntry(entry)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", entry.Name, err)
	}
	if entry.Size >= 0 && int64(len(data)) != entry.Size {
		return nil, fmt.Errorf("read %s: got %d bytes, entry has %d", entry.Name, len(data), entry.Size)
	}
	if entry.Digest == "" {
		return data, nil
	}
	if err := entry.Digest.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", entry.Name, err)
	}
	v := entry.Digest.Verifier()
	if _, err := v.Write(data); err != nil {
		return nil, err
	}
	if !v.Verified() {
		return nil, fmt.Errorf("%w: %s", ErrDigestMismatch, entry.Name)
	}
	return data, nil
}
