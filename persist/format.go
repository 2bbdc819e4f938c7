package persist

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"strings"
)

const (
	// Magic identifies persisted vecml models (ASCII "VMLP").
	Magic uint32 = 0x564d4c50
	// Version is the current envelope format version.
	Version uint16 = 1

	// magic(4) version(2) kind(1) compression(1) codecLen(1) rawSize(4) crc(4)
	fixedHeaderSize = 17
)

var (
	ErrInvalidMagic        = errors.New("persist: invalid magic number")
	ErrIncompatibleVersion = errors.New("persist: incompatible format version")
	ErrChecksumMismatch    = errors.New("persist: checksum mismatch")
	ErrUnknownCodec        = errors.New("persist: unknown codec")
	ErrUnsupportedModel    = errors.New("persist: unsupported model type")
	ErrKindMismatch        = errors.New("persist: model kind mismatch")
	ErrTruncated           = errors.New("persist: truncated data")
)

// Kind is the type of model held by an envelope.
type Kind uint8

const (
	KindKDTree Kind = iota + 1
	KindQuantizer
	KindStump
	KindBoost
	KindSOM
)

func (k Kind) String() string {
	switch k {
	case KindKDTree:
		return "kdtree"
	case KindQuantizer:
		return "quantizer"
	case KindStump:
		return "stump"
	case KindBoost:
		return "boost"
	case KindSOM:
		return "som"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Compression is the payload compression of an envelope.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionLZ4
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "lz4" or "zstd".
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("persist: unknown compression %q", name)
	}
}

// Header describes an envelope without decoding its payload.
type Header struct {
	Version     uint16
	Kind        Kind
	Compression Compression
	Codec       string
	RawSize     uint32
	Checksum    uint32
}

func (h Header) size() int { return fixedHeaderSize + len(h.Codec) }

func (h Header) appendTo(dst []byte) []byte {
	dst = binary.LittleEndian.AppendUint32(dst, Magic)
	dst = binary.LittleEndian.AppendUint16(dst, h.Version)
	dst = append(dst, byte(h.Kind), byte(h.Compression), byte(len(h.Codec)))
	dst = append(dst, h.Codec...)
	dst = binary.LittleEndian.AppendUint32(dst, h.RawSize)
	dst = binary.LittleEndian.AppendUint32(dst, h.Checksum)
	return dst
}

// ReadHeader parses the envelope header. It fails with ErrIncompatibleVersion
// for envelopes written by another format version.
func ReadHeader(data []byte) (Header, error) {
	if len(data) < fixedHeaderSize {
		return Header{}, ErrTruncated
	}
	if binary.LittleEndian.Uint32(data) != Magic {
		return Header{}, ErrInvalidMagic
	}
	h := Header{
		Version:     binary.LittleEndian.Uint16(data[4:]),
		Kind:        Kind(data[6]),
		Compression: Compression(data[7]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleVersion, h.Version, Version)
	}
	codecLen := int(data[8])
	if len(data) < fixedHeaderSize+codecLen {
		return Header{}, ErrTruncated
	}
	h.Codec = string(data[9 : 9+codecLen])
	rest := data[9+codecLen:]
	h.RawSize = binary.LittleEndian.Uint32(rest)
	h.Checksum = binary.LittleEndian.Uint32(rest[4:])
	return h, nil
}

func checksum(data []byte) uint32 { return crc32.ChecksumIEEE(data) }
