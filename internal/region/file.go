package region

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Compressed reports whether path selects zstd compression.
func Compressed(path string) bool {
	return strings.HasSuffix(path, ".zst")
}

// WriteFile encodes r to path, creating parent directories. Paths ending in
// ".zst" are zstd-compressed. Returns the number of bytes on disk.
func WriteFile(path string, r *Region) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if Compressed(path) {
		enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return 0, err
		}
		if err := Encode(enc, r); err != nil {
			enc.Close()
			return 0, fmt.Errorf("encode region: %w", err)
		}
		if err := enc.Close(); err != nil {
			return 0, fmt.Errorf("zstd close: %w", err)
		}
	} else if err := Encode(f, r); err != nil {
		return 0, fmt.Errorf("encode region: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), f.Close()
}

// ReadFile decodes the region at path. Compression is detected from the
// content, not the file name.
func ReadFile(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes a plain or zstd-compressed region stream.
func Read(rd io.Reader) (*Region, error) {
	br := bufio.NewReader(rd)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(head, zstdMagic) {
		return Decode(br)
	}

	dec, err := zstd.NewReader(br)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return Decode(dec)
}
