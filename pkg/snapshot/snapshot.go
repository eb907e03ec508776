// Package snapshot writes tables to byte streams and reads them back.
//
// A snapshot is a small frame around a structurally encoded table:
//
//	magic "HGS1" | format byte | name length byte | compression name | payload
//
// The format byte selects JSON (1) or YAML (2) for the payload, which is the
// table's Snapshot layout. The compression name is one of the algorithm
// names understood by the compression package; "none" stores the payload
// as is. Readers take the format and algorithm from the frame, so only
// writers choose them.
package snapshot

import (
	"bufio"
	"bytes"
	"io"

	gojson "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/hashgrid/pkg/compression"
	"github.com/ajitpratap0/hashgrid/pkg/errors"
	"github.com/ajitpratap0/hashgrid/pkg/logger"
	"github.com/ajitpratap0/hashgrid/pkg/metrics"
	"github.com/ajitpratap0/hashgrid/pkg/table"
)

// Magic opens every snapshot frame
const Magic = "HGS1"

// Format selects the payload encoding
type Format byte

const (
	// FormatJSON encodes the payload with goccy/go-json
	FormatJSON Format = 1
	// FormatYAML encodes the payload with yaml.v3
	FormatYAML Format = 2
)

// String returns the format's configuration name
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat resolves "json" or "yaml". The empty string means JSON.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeFormat, "unknown snapshot format %q", name)
	}
}

func (f Format) valid() bool {
	return f == FormatJSON || f == FormatYAML
}

// Options controls encoding and decoding. The zero value writes
// uncompressed JSON and logs to the global logger.
type Options struct {
	// Format of the payload. Zero means FormatJSON. Ignored by Read.
	Format Format
	// Compression applied to the payload. Empty means none. Ignored by Read.
	Compression compression.Algorithm
	// Level passed to the compressor. Zero means compression.Default.
	Level compression.Level
	// MaxDecompressedSize caps the decoded payload size on Read. Zero
	// means no limit.
	MaxDecompressedSize int64
	// TableOptions are applied to the table built by Read.
	TableOptions []table.Option
	// Logger receives debug records. Nil means logger.Get().
	Logger *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logger.Get()
}

// Header is the decoded frame prefix
type Header struct {
	Format      Format
	Compression compression.Algorithm
}

// Write encodes t as a snapshot frame onto w
func Write[K comparable, V any](w io.Writer, t *table.Table[K, V], opts Options) (err error) {
	timer := metrics.NewTimer()
	h := Header{Format: opts.Format, Compression: opts.Compression}
	if h.Format == 0 {
		h.Format = FormatJSON
	}
	if h.Compression == "" {
		h.Compression = compression.None
	}
	cw := &countingWriter{w: w}
	defer func() {
		metrics.ObserveSnapshot(metrics.OpWrite, h.Format.String(), string(h.Compression), cw.n, timer.Stop(), err)
	}()

	if !h.Format.valid() {
		return errors.Newf(errors.ErrorTypeValidation, "unknown snapshot format %d", byte(h.Format))
	}
	comp, err := compression.NewCompressor(&compression.Config{
		Algorithm: h.Compression,
		Level:     opts.Level,
	})
	if err != nil {
		return err
	}
	h.Compression = comp.Algorithm()

	snap := t.Snapshot()
	payload, err := encodePayload(h.Format, snap)
	if err != nil {
		return err
	}

	if err := writeHeader(cw, h); err != nil {
		return err
	}
	if err := comp.CompressStream(cw, bytes.NewReader(payload)); err != nil {
		return err
	}

	opts.logger().Debug("snapshot written",
		zap.String("format", h.Format.String()),
		zap.String("compression", string(h.Compression)),
		zap.Int("rows", snap.Rows),
		zap.Int("columns", len(snap.Columns)),
		zap.Int("payload_bytes", len(payload)),
		zap.Int64("bytes", cw.n),
		zap.Duration("took", timer.Stop()))
	return nil
}

// Read decodes a snapshot frame from r into a new hash-backed table
func Read[K comparable, V any](r io.Reader, opts Options) (t *table.Table[K, V], err error) {
	timer := metrics.NewTimer()
	cr := &countingReader{r: r}
	var h Header
	defer func() {
		metrics.ObserveSnapshot(metrics.OpRead, h.Format.String(), string(h.Compression), cr.n, timer.Stop(), err)
	}()

	br := bufio.NewReader(cr)
	h, err = ReadHeader(br)
	if err != nil {
		return nil, err
	}
	comp, err := compression.NewCompressor(&compression.Config{
		Algorithm:           h.Compression,
		MaxDecompressedSize: opts.MaxDecompressedSize,
	})
	if err != nil {
		return nil, err
	}

	var payload bytes.Buffer
	if err := comp.DecompressStream(&payload, br); err != nil {
		return nil, err
	}

	var snap table.Snapshot[K, V]
	if err := decodePayload(h.Format, payload.Bytes(), &snap); err != nil {
		return nil, err
	}
	t, err = table.FromSnapshot(snap, opts.TableOptions...)
	if err != nil {
		return nil, err
	}

	opts.logger().Debug("snapshot read",
		zap.String("format", h.Format.String()),
		zap.String("compression", string(h.Compression)),
		zap.Int("rows", t.RowCount()),
		zap.Int("columns", t.ColumnCount()),
		zap.Int("payload_bytes", payload.Len()),
		zap.Int64("bytes", cr.n),
		zap.Duration("took", timer.Stop()))
	return t, nil
}

// ReadHeader reads and validates the frame prefix, leaving r positioned at
// the payload
func ReadHeader(r io.Reader) (Header, error) {
	var fixed [len(Magic) + 2]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return Header{}, errors.Wrap(err, errors.ErrorTypeFormat, "truncated snapshot header")
	}
	if string(fixed[:len(Magic)]) != Magic {
		return Header{}, errors.New(errors.ErrorTypeFormat, "not a snapshot: bad magic").
			WithDetail("magic", string(fixed[:len(Magic)]))
	}

	h := Header{Format: Format(fixed[len(Magic)])}
	if !h.Format.valid() {
		return Header{}, errors.Newf(errors.ErrorTypeFormat, "unknown snapshot format %d", byte(h.Format))
	}

	name := make([]byte, fixed[len(Magic)+1])
	if _, err := io.ReadFull(r, name); err != nil {
		return Header{}, errors.Wrap(err, errors.ErrorTypeFormat, "truncated compression name")
	}
	algorithm, err := compression.ParseAlgorithm(string(name))
	if err != nil {
		return Header{}, err
	}
	h.Compression = algorithm
	return h, nil
}

func writeHeader(w io.Writer, h Header) error {
	name := string(h.Compression)
	if len(name) > 255 {
		return errors.Newf(errors.ErrorTypeValidation, "compression name %q too long", name)
	}
	buf := make([]byte, 0, len(Magic)+2+len(name))
	buf = append(buf, Magic...)
	buf = append(buf, byte(h.Format), byte(len(name)))
	buf = append(buf, name...)
	if _, err := w.Write(buf); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write snapshot header")
	}
	return nil
}

func encodePayload[K comparable, V any](f Format, snap table.Snapshot[K, V]) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch f {
	case FormatYAML:
		data, err = yaml.Marshal(snap)
	default:
		data, err = gojson.Marshal(snap)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFormat, "failed to encode snapshot payload").
			WithDetail("format", f.String())
	}
	return data, nil
}

func decodePayload[K comparable, V any](f Format, data []byte, snap *table.Snapshot[K, V]) error {
	var err error
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, snap)
	default:
		err = gojson.Unmarshal(data, snap)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFormat, "failed to decode snapshot payload").
			WithDetail("format", f.String())
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}
