package index

import (
	"bytes"
	"crypto/sha256"
	"path/filepath"
	"testing"
)

func sampleImage() *Image {
	return &Image{
		Project: "shop",
		Version: "0.3.1",
		Files: []FileEntry{
			{
				Path:   "imports/app.li",
				Digest: sha256.Sum256([]byte("from app.models import User\n")),
				Refs: []RefEntry{
					{Module: "app.models", Name: "User", Line: 1},
				},
			},
		},
		Modules: []ModuleEntry{
			{Path: "app.models", Refs: 1},
		},
	}
}

func TestImageCBORRoundTrip(t *testing.T) {
	img := sampleImage()

	data, err := Marshal(img)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.Project != img.Project {
		t.Error("Project mismatch")
	}
	if got.Version != img.Version {
		t.Error("Version mismatch")
	}
	if len(got.Files) != 1 || got.Files[0].Path != "imports/app.li" {
		t.Errorf("Files = %+v", got.Files)
	}
	if got.Files[0].Digest != img.Files[0].Digest {
		t.Error("Digest mismatch")
	}
	if len(got.Files[0].Refs) != 1 || got.Files[0].Refs[0].Name != "User" {
		t.Errorf("Refs = %+v", got.Files[0].Refs)
	}
	if len(got.Modules) != 1 || got.Modules[0].Refs != 1 {
		t.Errorf("Modules = %+v", got.Modules)
	}
}

func TestUnmarshalInvalidData(t *testing.T) {
	_, err := Unmarshal([]byte("not cbor"))
	if err == nil {
		t.Error("Unmarshal should fail on invalid data")
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	img := sampleImage()

	var buf bytes.Buffer
	if err := Write(&buf, img); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Project != "shop" || len(got.Files) != 1 {
		t.Errorf("image = %+v", got)
	}
}

func TestReadBadMagic(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleImage()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()
	data[0] = 'X'

	_, err := Read(bytes.NewReader(data))
	if err == nil {
		t.Error("Read should reject bad magic")
	}
}

func TestReadBadVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleImage()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()
	data[7] = 0xFF

	_, err := Read(bytes.NewReader(data))
	if err == nil {
		t.Error("Read should reject unknown version")
	}
}

func TestReadCorruptPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleImage()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()
	data[len(data)-1] ^= 0xFF

	_, err := Read(bytes.NewReader(data))
	if err == nil {
		t.Error("Read should detect payload corruption")
	}
}

func TestReadTruncated(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{'L', 'Z'}))
	if err == nil {
		t.Error("Read should fail on truncated input")
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".lazykit", "index.lzi")

	if err := WriteFile(path, sampleImage()); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Project != "shop" {
		t.Errorf("Project = %q", got.Project)
	}
}

func TestReadFileNotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "absent.lzi"))
	if err == nil {
		t.Error("ReadFile should fail on missing file")
	}
}
