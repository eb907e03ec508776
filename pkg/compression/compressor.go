// Package compression compresses hashgrid snapshot payloads.
//
// # Overview
//
// The compression package provides:
//   - Multiple compression algorithms (Gzip, Snappy, LZ4, Zstd, S2, Deflate)
//   - Configurable compression levels (Fastest, Default, Better, Best)
//   - Both in-memory and streaming operations
//   - An optional cap on decompressed size
//
// Algorithms are named by short strings ("zstd", "lz4", ...) so that a
// snapshot frame can record which one produced its payload. ParseAlgorithm
// turns such a name back into an Algorithm.
//
// # Algorithm Selection
//
//   - Snappy/S2: Best for speed, moderate compression
//   - LZ4: Extremely fast, decent compression
//   - Zstd: Best compression ratio, good speed
//   - Gzip/Deflate: Wide compatibility
//
// # Basic Usage
//
//	comp, err := compression.NewCompressor(&compression.Config{
//	    Algorithm: compression.Zstd,
//	    Level:     compression.Better,
//	})
//
//	compressed, err := comp.Compress(data)
//	original, err := comp.Decompress(compressed)
package compression

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
)

// Algorithm represents a compression algorithm by its frame name
type Algorithm string

const (
	// None represents no compression
	None Algorithm = "none"
	// Gzip represents gzip compression
	Gzip Algorithm = "gzip"
	// Snappy represents snappy compression
	Snappy Algorithm = "snappy"
	// LZ4 represents lz4 compression
	LZ4 Algorithm = "lz4"
	// Zstd represents zstandard compression
	Zstd Algorithm = "zstd"
	// S2 represents s2 compression (Snappy compatible)
	S2 Algorithm = "s2"
	// Deflate represents deflate compression
	Deflate Algorithm = "deflate"
)

// Algorithms lists every supported algorithm
func Algorithms() []Algorithm {
	return []Algorithm{None, Gzip, Snappy, LZ4, Zstd, S2, Deflate}
}

// ParseAlgorithm resolves a name such as "zstd". The empty string means
// None. Unknown names fail with ErrorTypeFormat.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return None, nil
	}
	a := Algorithm(strings.ToLower(name))
	for _, known := range Algorithms() {
		if a == known {
			return a, nil
		}
	}
	return "", errors.Newf(errors.ErrorTypeFormat, "unsupported compression algorithm: %s", name)
}

// Level represents compression level, controlling the trade-off between
// compression speed and compression ratio.
type Level int

const (
	// Fastest prioritizes speed over compression ratio.
	Fastest Level = 1
	// Default balances speed and compression.
	Default Level = 5
	// Better improves compression at cost of speed.
	Better Level = 7
	// Best maximizes compression ratio.
	Best Level = 9
)

// String returns the level's configuration name
func (l Level) String() string {
	switch l {
	case Fastest:
		return "fastest"
	case Better:
		return "better"
	case Best:
		return "best"
	default:
		return "default"
	}
}

// ParseLevel resolves "fastest", "default", "better" or "best". The empty
// string means Default.
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "fastest":
		return Fastest, nil
	case "", "default":
		return Default, nil
	case "better":
		return Better, nil
	case "best":
		return Best, nil
	default:
		return 0, errors.Newf(errors.ErrorTypeConfig, "unknown compression level %q", name)
	}
}

// Compressor provides compression and decompression functionality.
// All implementations are safe for concurrent use.
type Compressor interface {
	// Compress compresses data and returns the compressed bytes.
	// The input data is not modified.
	Compress(data []byte) ([]byte, error)

	// Decompress decompresses data and returns the original bytes.
	// The input data is not modified.
	Decompress(data []byte) ([]byte, error)

	// CompressStream compresses from reader to writer.
	CompressStream(dst io.Writer, src io.Reader) error

	// DecompressStream decompresses from reader to writer.
	DecompressStream(dst io.Writer, src io.Reader) error

	// Algorithm returns the compression algorithm used.
	Algorithm() Algorithm

	// Level returns the compression level configured.
	Level() Level
}

// Config represents compressor configuration
type Config struct {
	Algorithm Algorithm // Compression algorithm to use
	Level     Level     // Compression level
	// MaxDecompressedSize caps the bytes a single decompression may
	// produce. Zero means no limit.
	MaxDecompressedSize int64
}

// DefaultConfig returns the default compression configuration: zstd at the
// default level with no size limit.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: Zstd,
		Level:     Default,
	}
}

// NewCompressor creates a new compressor based on the provided configuration.
// If config is nil, default configuration is used.
func NewCompressor(config *Config) (Compressor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxDecompressedSize < 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "max decompressed size must not be negative").
			WithDetail("max_decompressed_size", config.MaxDecompressedSize)
	}
	level := config.Level
	if level == 0 {
		level = Default
	}
	base := baseCompressor{
		level:    level,
		maxBytes: config.MaxDecompressedSize,
	}

	var codec streamCodec
	switch config.Algorithm {
	case None, "":
		base.algorithm = None
		codec = noneCodec{}
	case Gzip:
		base.algorithm = Gzip
		codec = newGzipCodec(level)
	case Snappy:
		base.algorithm = Snappy
		codec = snappyCodec{}
	case LZ4:
		base.algorithm = LZ4
		codec = lz4Codec{level: mapLZ4Level(level)}
	case Zstd:
		base.algorithm = Zstd
		codec = newZstdCodec(level)
	case S2:
		base.algorithm = S2
		codec = s2Codec{level: level}
	case Deflate:
		base.algorithm = Deflate
		codec = deflateCodec{level: mapDeflateLevel(level)}
	default:
		return nil, errors.Newf(errors.ErrorTypeFormat, "unsupported compression algorithm: %s", config.Algorithm)
	}
	return &compressor{baseCompressor: base, codec: codec}, nil
}

// streamCodec is the per-algorithm part of a compressor
type streamCodec interface {
	encode(dst io.Writer, src io.Reader) error
	decode(dst io.Writer, src io.Reader) error
}

// Base compressor implementation
type baseCompressor struct {
	algorithm Algorithm
	level     Level
	maxBytes  int64
}

// Algorithm returns the compression algorithm
func (bc *baseCompressor) Algorithm() Algorithm {
	return bc.algorithm
}

// Level returns the compression level
func (bc *baseCompressor) Level() Level {
	return bc.level
}

type compressor struct {
	baseCompressor
	codec streamCodec
}

func (c *compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data) / 2)
	if err := c.CompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *compressor) Decompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(data) * 2)
	if err := c.DecompressStream(&buf, bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *compressor) CompressStream(dst io.Writer, src io.Reader) error {
	if err := c.codec.encode(dst, src); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "compression failed").
			WithDetail("algorithm", string(c.algorithm))
	}
	return nil
}

func (c *compressor) DecompressStream(dst io.Writer, src io.Reader) error {
	var limit *limitWriter
	if c.maxBytes > 0 {
		limit = &limitWriter{w: dst, remaining: c.maxBytes}
		dst = limit
	}
	if err := c.codec.decode(dst, src); err != nil {
		if limit != nil && limit.exceeded {
			return errors.New(errors.ErrorTypeResource, "decompressed data exceeds size limit").
				WithDetail("algorithm", string(c.algorithm)).
				WithDetail("max_bytes", c.maxBytes)
		}
		return errors.Wrap(err, errors.ErrorTypeFormat, "decompression failed").
			WithDetail("algorithm", string(c.algorithm))
	}
	return nil
}

// limitWriter fails once more than remaining bytes are written
type limitWriter struct {
	w         io.Writer
	remaining int64
	exceeded  bool
}

var errLimitExceeded = errors.New(errors.ErrorTypeResource, "decompressed data exceeds size limit")

func (lw *limitWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > lw.remaining {
		lw.exceeded = true
		return 0, errLimitExceeded
	}
	n, err := lw.w.Write(p)
	lw.remaining -= int64(n)
	return n, err
}

type noneCodec struct{}

func (noneCodec) encode(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

func (noneCodec) decode(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, src)
	return err
}

// Coder pools are shared by every compressor. Encoder pools are keyed by the
// library level, decoders do not depend on the level.
var (
	gzipWriterPools sync.Map // int -> *sync.Pool
	gzipReaderPool  = sync.Pool{New: func() interface{} { return new(gzip.Reader) }}

	zstdEncoderPools sync.Map // zstd.EncoderLevel -> *sync.Pool
	zstdDecoderPool  = sync.Pool{New: func() interface{} {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	}}
)

// poolFor returns the pool stored under key, creating it with newFn
func poolFor(pools *sync.Map, key interface{}, newFn func() interface{}) *sync.Pool {
	if p, ok := pools.Load(key); ok {
		return p.(*sync.Pool)
	}
	p, _ := pools.LoadOrStore(key, &sync.Pool{New: newFn})
	return p.(*sync.Pool)
}

// Gzip codec
type gzipCodec struct {
	writerPool *sync.Pool
}

func newGzipCodec(level Level) gzipCodec {
	gzipLevel := mapGzipLevel(level)
	return gzipCodec{
		writerPool: poolFor(&gzipWriterPools, gzipLevel, func() interface{} {
			w, _ := gzip.NewWriterLevel(nil, gzipLevel)
			return w
		}),
	}
}

func (gc gzipCodec) encode(dst io.Writer, src io.Reader) error {
	w := gc.writerPool.Get().(*gzip.Writer)
	defer gc.writerPool.Put(w)

	w.Reset(dst)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (gzipCodec) decode(dst io.Writer, src io.Reader) error {
	r := gzipReaderPool.Get().(*gzip.Reader)
	defer gzipReaderPool.Put(r)

	if err := r.Reset(src); err != nil {
		return err
	}
	_, err := io.Copy(dst, r)
	return err
}

// Snappy codec, using the framed stream format
type snappyCodec struct{}

func (snappyCodec) encode(dst io.Writer, src io.Reader) error {
	w := snappy.NewBufferedWriter(dst)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (snappyCodec) decode(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, snappy.NewReader(src))
	return err
}

// LZ4 codec
type lz4Codec struct {
	level lz4.CompressionLevel
}

func (lc lz4Codec) encode(dst io.Writer, src io.Reader) error {
	w := lz4.NewWriter(dst)
	if err := w.Apply(lz4.CompressionLevelOption(lc.level)); err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (lc lz4Codec) decode(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, lz4.NewReader(src))
	return err
}

// Zstd codec. Pooled decoders run synchronously.
type zstdCodec struct {
	encoderPool *sync.Pool
}

func newZstdCodec(level Level) zstdCodec {
	encLevel := mapZstdLevel(level)
	return zstdCodec{
		encoderPool: poolFor(&zstdEncoderPools, encLevel, func() interface{} {
			enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(encLevel))
			return enc
		}),
	}
}

func (zc zstdCodec) encode(dst io.Writer, src io.Reader) error {
	enc := zc.encoderPool.Get().(*zstd.Encoder)
	defer zc.encoderPool.Put(enc)

	enc.Reset(dst)
	if _, err := io.Copy(enc, src); err != nil {
		return err
	}
	return enc.Close()
}

func (zstdCodec) decode(dst io.Writer, src io.Reader) error {
	dec := zstdDecoderPool.Get().(*zstd.Decoder)
	defer func() {
		// Drop the reference to src before the decoder goes back
		_ = dec.Reset(nil)
		zstdDecoderPool.Put(dec)
	}()

	if err := dec.Reset(src); err != nil {
		return err
	}
	_, err := io.Copy(dst, dec)
	return err
}

// S2 codec (Snappy-compatible but better compression)
type s2Codec struct {
	level Level
}

func (sc s2Codec) encode(dst io.Writer, src io.Reader) error {
	var opts []s2.WriterOption
	switch {
	case sc.level >= Best:
		opts = append(opts, s2.WriterBestCompression())
	case sc.level >= Better:
		opts = append(opts, s2.WriterBetterCompression())
	}
	w := s2.NewWriter(dst, opts...)
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (sc s2Codec) decode(dst io.Writer, src io.Reader) error {
	_, err := io.Copy(dst, s2.NewReader(src))
	return err
}

// Deflate codec
type deflateCodec struct {
	level int
}

func (dc deflateCodec) encode(dst io.Writer, src io.Reader) error {
	w, err := flate.NewWriter(dst, dc.level)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return w.Close()
}

func (dc deflateCodec) decode(dst io.Writer, src io.Reader) error {
	r := flate.NewReader(src)
	defer r.Close()

	_, err := io.Copy(dst, r)
	return err
}

// Helper functions to map compression levels

func mapGzipLevel(level Level) int {
	switch level {
	case Fastest:
		return gzip.BestSpeed
	case Best:
		return gzip.BestCompression
	default:
		return gzip.DefaultCompression
	}
}

func mapLZ4Level(level Level) lz4.CompressionLevel {
	switch level {
	case Fastest:
		return lz4.Fast
	case Best:
		return lz4.Level9
	default:
		return lz4.Level5
	}
}

func mapZstdLevel(level Level) zstd.EncoderLevel {
	switch level {
	case Fastest:
		return zstd.SpeedFastest
	case Better:
		return zstd.SpeedBetterCompression
	case Best:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

func mapDeflateLevel(level Level) int {
	switch level {
	case Fastest:
		return flate.BestSpeed
	case Best:
		return flate.BestCompression
	default:
		return flate.DefaultCompression
	}
}
