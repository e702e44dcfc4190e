package uasset

import (
	"fmt"
	"log/slog"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/exports"
	"github.com/meigma/uasset/version"
)

// Decode parses a package. Split packages pass their export data with
// WithExportData.
//
// A failed decode returns a *Error naming the stage and byte offset; the
// input must be decoded again from scratch.
func Decode(data []byte, opts ...Option) (*Asset, error) {
	a := newAsset(opts)
	if err := a.decode(data); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Asset) decode(data []byte) error {
	if len(a.cfg.exportData) > 0 {
		data = append(append(make([]byte, 0, len(data)+len(a.cfg.exportData)), data...), a.cfg.exportData...)
	}
	if limit := a.cfg.maxAssetSize; limit > 0 && uint64(len(data)) > limit {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrTooLarge, len(data), limit)
	}
	r := archive.NewReader(data, a)

	s := readSummary(r, a.cfg.engine)
	if err := r.Err(); err != nil {
		return codecerr.WithStage(err, codecerr.StageHeader, r.Position())
	}
	a.summary = s
	a.custom = s.CustomVersions
	if s.Unversioned() && s.CustomVersions.Len() == 0 {
		a.custom = version.DefaultCustomVersions(a.cfg.engine)
	}
	a.advance(StateHeaderRead)

	if err := a.stage(r, codecerr.StageNames, a.readNames); err != nil {
		return err
	}
	a.advance(StateNamesRead)

	if err := a.stage(r, codecerr.StageSoftObjectPaths, a.readSoftObjectPaths); err != nil {
		return err
	}
	if err := a.stage(r, codecerr.StageImports, a.readImports); err != nil {
		return err
	}
	a.advance(StateImportsRead)

	var bases []exports.BaseExport
	err := a.stage(r, codecerr.StageExports, func(r *archive.Reader) {
		bases = a.readExportTable(r)
		a.exports = make([]exports.Export, len(bases))
		for i, b := range bases {
			a.exports[i] = exports.Header(b)
		}
	})
	if err != nil {
		return err
	}
	if err := a.stage(r, codecerr.StageDepends, func(r *archive.Reader) {
		a.readDepends(r)
		a.readSoftPackageRefs(r)
		a.readAssetRegistry(r)
	}); err != nil {
		return err
	}
	if err := a.stage(r, codecerr.StagePreload, a.readPreload); err != nil {
		return err
	}
	a.advance(StateExportsRead)

	if !a.cfg.headerOnly {
		if err := a.decodePayloads(r, bases); err != nil {
			return err
		}
		a.captureTrailer(data, bases)
	}
	a.advance(StatePayloadsRead)
	a.advance(StateDecoded)
	return nil
}

// stage runs read and stamps any failure with stage.
func (a *Asset) stage(r *archive.Reader, stage codecerr.Stage, read func(*archive.Reader)) error {
	read(r)
	if err := r.Err(); err != nil {
		return codecerr.WithStage(err, stage, r.Position())
	}
	a.log().Debug("decoded section", slog.String("stage", string(stage)), slog.Int64("offset", r.Position()))
	return nil
}

func (a *Asset) decodePayloads(r *archive.Reader, bases []exports.BaseExport) error {
	opts := []exports.Option{exports.WithLogger(a.log())}
	if a.cfg.rawExports {
		opts = append(opts, exports.WithRawPayloads())
	}
	d := exports.NewDecoder(opts...)
	for i, b := range bases {
		e, err := d.Decode(r, b)
		if err != nil {
			return codecerr.WithPath(codecerr.WithStage(err, codecerr.StagePayloads, b.SerialOffset), fmt.Sprintf("export %d", i+1))
		}
		a.exports[i] = e
	}
	return nil
}

// captureTrailer keeps every byte after the last payload, and rebases the
// summary offsets that point there.
func (a *Asset) captureTrailer(data []byte, bases []exports.BaseExport) {
	s := a.summary
	start := int64(s.TotalHeaderSize)
	for _, b := range bases {
		start = max(start, b.SerialOffset+b.SerialSize)
	}
	start = min(start, int64(len(data)))
	if start < int64(len(data)) {
		a.trailer = append([]byte(nil), data[start:]...)
	}
	a.bulkDataRel, a.payloadTOCRel = -1, -1
	if s.BulkDataStartOffset >= start {
		a.bulkDataRel = s.BulkDataStartOffset - start
	}
	if s.PayloadTOCOffset > 0 && s.PayloadTOCOffset >= start {
		a.payloadTOCRel = s.PayloadTOCOffset - start
	}
}
