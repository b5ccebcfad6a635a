package storage

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"

	"github.com/josefjadrny/go-idb/pkg/domain"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// Codec turns collection artifacts into bytes and back.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
	// Ext is the file extension appended to artifact names.
	Ext() string
	Name() string
}

// CodecByName returns the codec registered under name. An empty name selects JSON.
func CodecByName(name string, compression Compression) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "godb", "binary":
		return NewBinaryCodec(compression), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", name)
	}
}

// JSONCodec stores artifacts as plain JSON documents.
type JSONCodec struct{}

func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) Ext() string  { return ".json" }
func (JSONCodec) Name() string { return "json" }

const (
	// Magic bytes to identify our file format
	MagicBytes = "IDB1"
	// Current version
	FormatVersion = 1
	// File extension for the binary format
	FileExtension = ".godb"
)

// Compression selects how the msgpack body of a binary artifact is packed.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

// ParseCompression maps a config value onto a Compression.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "lz4":
		return CompressionLZ4, nil
	case "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", s)
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// FileHeader represents the header of a binary artifact
type FileHeader struct {
	Magic       [4]byte // "IDB1"
	Version     uint8   // Format version
	Compression uint8   // Compression of the body
	Reserved    [2]byte // Reserved for future use
	Length      uint32  // Uncompressed body length
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer, c Compression, length int) error {
	header := FileHeader{
		Magic:       [4]byte{'I', 'D', 'B', '1'},
		Version:     FormatVersion,
		Compression: uint8(c),
		Length:      uint32(length),
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// BinaryCodec stores artifacts as a FileHeader followed by a msgpack body,
// optionally compressed with lz4 or zstd.
type BinaryCodec struct {
	compression Compression
}

// NewBinaryCodec creates a binary codec using the given body compression.
func NewBinaryCodec(c Compression) *BinaryCodec {
	return &BinaryCodec{compression: c}
}

func (c *BinaryCodec) Ext() string  { return FileExtension }
func (c *BinaryCodec) Name() string { return "godb" }

// Compression returns the compression applied on Marshal.
func (c *BinaryCodec) Compression() Compression { return c.compression }

func (c *BinaryCodec) Marshal(v interface{}) ([]byte, error) {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode MessagePack: %w", err)
	}

	packed, err := compress(c.compression, body)
	if err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(12 + len(packed))
	if err := WriteHeader(&buf, c.compression, len(body)); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	buf.Write(packed)
	return buf.Bytes(), nil
}

// Unmarshal reads any compression, not only the one the codec writes with.
func (c *BinaryCodec) Unmarshal(data []byte, v interface{}) error {
	reader := bytes.NewReader(data)
	header, err := ReadHeader(reader)
	if err != nil {
		return fmt.Errorf("invalid file header: %w", err)
	}

	body, err := decompress(Compression(header.Compression), data[len(data)-reader.Len():], int(header.Length))
	if err != nil {
		return fmt.Errorf("failed to decompress data: %w", err)
	}

	if err := msgpack.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode MessagePack: %w", err)
	}
	normalizeDecoded(v)
	return nil
}

func compress(c Compression, body []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return body, nil
	case CompressionLZ4:
		out := make([]byte, lz4.CompressBlockBound(len(body)))
		var hashTable [1 << 16]int
		n, err := lz4.CompressBlock(body, out, hashTable[:])
		if err != nil {
			return nil, err
		}
		return out[:n], nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(body, make([]byte, 0, len(body))), nil
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

func decompress(c Compression, packed []byte, length int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(packed) != length {
			return nil, fmt.Errorf("body length %d does not match header length %d", len(packed), length)
		}
		return packed, nil
	case CompressionLZ4:
		out := make([]byte, length)
		n, err := lz4.UncompressBlock(packed, out)
		if err != nil {
			return nil, err
		}
		return out[:n], nil
	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(packed, make([]byte, 0, length))
	default:
		return nil, fmt.Errorf("unknown compression %d", c)
	}
}

// normalizeDecoded converts the integer kinds msgpack hands back into float64,
// so records read from a binary artifact look like records read from JSON.
func normalizeDecoded(v interface{}) {
	switch t := v.(type) {
	case *map[string]domain.Record:
		for _, rec := range *t {
			normalizeMap(rec)
		}
	case *domain.Meta:
		for field, snap := range t.Indexes {
			for i := range snap.Entries {
				snap.Entries[i].Value = normalizeValue(snap.Entries[i].Value)
			}
			t.Indexes[field] = snap
		}
	}
}

func normalizeMap(m map[string]interface{}) {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
}

func normalizeValue(v interface{}) interface{} {
	if n, ok := domain.ToFloat64(v); ok {
		return n
	}
	switch t := v.(type) {
	case map[string]interface{}:
		normalizeMap(t)
		return t
	case domain.Record:
		normalizeMap(t)
		return t
	}
	return v
}
