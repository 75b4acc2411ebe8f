package index

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("index: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes an Image to CBOR bytes.
func Marshal(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// Unmarshal deserializes an Image from CBOR bytes.
func Unmarshal(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("index: unmarshal image: %w", err)
	}
	return &img, nil
}

// Image file layout: magic(4) + version(4) + payload sha256(32) + CBOR payload.
const imageHeaderSize = 4 + 4 + 32

// Write writes the image with its file header to w.
func Write(w io.Writer, img *Image) error {
	payload, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("index: marshal image: %w", err)
	}

	header := make([]byte, imageHeaderSize)
	copy(header[0:4], ImageMagic[:])
	binary.BigEndian.PutUint32(header[4:8], ImageVersion)
	digest := sha256.Sum256(payload)
	copy(header[8:], digest[:])

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("index: write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("index: write payload: %w", err)
	}
	return nil
}

// Read reads an image from r, checking magic, version and payload digest.
func Read(r io.Reader) (*Image, error) {
	header := make([]byte, imageHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("index: read header: %w", err)
	}

	if [4]byte(header[0:4]) != ImageMagic {
		return nil, fmt.Errorf("index: not an index image (bad magic %x)", header[0:4])
	}
	version := binary.BigEndian.Uint32(header[4:8])
	if version != ImageVersion {
		return nil, fmt.Errorf("index: unsupported image version %d (want %d)", version, ImageVersion)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("index: read payload: %w", err)
	}
	if sha256.Sum256(payload) != [32]byte(header[8:]) {
		return nil, fmt.Errorf("index: image payload digest mismatch")
	}

	return Unmarshal(payload)
}

// WriteFile writes the image to path, creating parent directories.
func WriteFile(path string, img *Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("index: create %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("index: create %s: %w", path, err)
	}
	defer f.Close()

	return Write(f, img)
}

// ReadFile reads an image from path.
func ReadFile(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f)
}
