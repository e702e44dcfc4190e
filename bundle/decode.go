package bundle

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/uasset"
)

// Decoded is one package decoded by DecodeAll.
type Decoded struct {
	// Path is the .uasset entry path.
	Path  string
	Asset *uasset.Asset
}

// DecodeAll decodes every .uasset entry under prefix, pairing each with its
// .uexp when present. Packages are decoded concurrently, bounded by
// WithDecodeConcurrency, and returned in path order. The first failure
// cancels the remaining decodes and is returned.
func (b *Bundle) DecodeAll(ctx context.Context, prefix string, opts ...uasset.Option) ([]Decoded, error) {
	var paths []string
	for e := range b.idx.entriesWithPrefix(prefix) {
		if strings.HasSuffix(e.Path, ".uasset") {
			paths = append(paths, e.Path)
		}
	}
	b.log().Debug("decoding packages", "prefix", prefix, "count", len(paths))

	out := make([]Decoded, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if b.decodeConcurrency > 0 {
		g.SetLimit(b.decodeConcurrency)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := uasset.DecodeFromContainer(b, path, opts...)
			if err != nil {
				return err
			}
			out[i] = Decoded{Path: path, Asset: a}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
