package exports

import (
	"log/slog"
	"strings"

	"github.com/meigma/uasset/archive"
	"github.com/meigma/uasset/codecerr"
	"github.com/meigma/uasset/properties"
)

// Decoder refines export table entries into payload variants.
type Decoder struct {
	logger *slog.Logger
	props  *properties.Decoder
	raw    bool
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithLogger sets the logger that reports raw fallbacks.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// WithRawPayloads keeps every payload as a RawExport.
func WithRawPayloads() Option {
	return func(d *Decoder) {
		d.raw = true
	}
}

// NewDecoder returns a Decoder.
func NewDecoder(opts ...Option) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	d.props = properties.NewDecoder(properties.WithLogger(d.logger))
	return d
}

// ClassName returns the class name of b. Exports without a class are
// classes themselves.
func ClassName(c archive.Context, b *BaseExport) (string, bool) {
	if b.ClassIndex.IsNull() {
		return "Class", true
	}
	return c.ClassName(b.ClassIndex)
}

// Decode reads the payload of b from r, whose positions are offsets into
// the whole package. Payload failures that a RawExport can absorb are
// logged and absorbed; the returned error is fatal to the package.
func (d *Decoder) Decode(r *archive.Reader, b BaseExport) (Export, error) {
	start, end := b.SerialOffset, b.SerialOffset+b.SerialSize
	if end < start || end > r.Len() {
		return nil, codecerr.Structural(start, "export %s payload [%d, %d) outside %d bytes",
			r.NameMap().String(b.ObjectName), start, end, r.Len())
	}
	raw := func(cause error) (Export, error) {
		if cause != nil {
			d.logger.Warn("export kept as raw bytes",
				slog.String("export", r.NameMap().String(b.ObjectName)),
				slog.Int64("offset", start),
				slog.String("error", cause.Error()))
		}
		win := r.Window(start, end)
		data := win.ReadBytes(end - start)
		if err := win.Err(); err != nil {
			return nil, err
		}
		return &RawExport{BaseExport: b, Data: data}, nil
	}

	class, ok := ClassName(r, &b)
	if !ok {
		return raw(codecerr.New(codecerr.KindUnresolvedReference).
			Offset(start).
			Detail("class index %d does not resolve", b.ClassIndex).
			Build())
	}
	if d.raw {
		return raw(nil)
	}

	win := r.Window(start, end)
	e, err := d.refine(win, b, class)
	if err == nil {
		err = win.Err()
	}
	if err != nil {
		if !codecerr.Recoverable(err) {
			return nil, codecerr.WithPath(err, r.NameMap().String(b.ObjectName))
		}
		return raw(err)
	}
	if rest := end - win.Position(); rest > 0 {
		e.Base().Extras = win.ReadBytes(rest)
		d.logger.Debug("export has trailing bytes",
			slog.String("export", r.NameMap().String(b.ObjectName)),
			slog.String("class", class),
			slog.Int64("extras", rest))
	}
	return e, nil
}

func (d *Decoder) refine(r *archive.Reader, b BaseExport, class string) (Export, error) {
	switch {
	case class == "Class" || strings.HasSuffix(class, "BlueprintGeneratedClass"):
		return d.readClass(r, b, class)
	case class == "Enum" || class == "UserDefinedEnum":
		return d.readEnum(r, b, class)
	case class == "Function":
		return d.readFunction(r, b, class)
	case class == "ScriptStruct":
		s, err := d.readStruct(r, b, class)
		if err != nil {
			return nil, err
		}
		e := &ScriptStructExport{StructExport: s, StructFlags: r.ReadUint32()}
		return e, r.Err()
	case class == "UserDefinedStruct":
		s, err := d.readStruct(r, b, class)
		if err != nil {
			return nil, err
		}
		return &s, nil
	case strings.HasSuffix(class, "StringTable"):
		return d.readStringTable(r, b, class)
	case strings.HasSuffix(class, "DataTable"):
		return d.readDataTable(r, b, class)
	case strings.HasSuffix(class, "Property"):
		return d.readProperty(r, b, class)
	default:
		n, err := d.readNormal(r, b, class)
		if err != nil {
			return nil, err
		}
		return &n, nil
	}
}

// Header returns an UnknownExport for b, for packages decoded without
// their payloads.
func Header(b BaseExport) *UnknownExport {
	return &UnknownExport{BaseExport: b}
}

// WritePayload writes e's payload followed by its Extras.
func WritePayload(w archive.Writer, e Export) error {
	e.Write(w)
	w.WriteBytes(e.Base().Extras)
	return w.Err()
}
