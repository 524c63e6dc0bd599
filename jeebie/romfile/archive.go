package romfile

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"
)

func extractFromZIP(path string) ([]byte, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isROMFile(f.Name) {
			continue
		}
		return readEntry(f.Name, f.Open)
	}
	return nil, "", ErrNoROM
}

func extractFrom7z(path string) ([]byte, string, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening 7z: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isROMFile(f.Name) {
			continue
		}
		return readEntry(f.Name, f.Open)
	}
	return nil, "", ErrNoROM
}

// extractFromGzip handles both a single gzipped image and a tarball.
func extractFromGzip(r io.Reader, path string) ([]byte, string, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, "", fmt.Errorf("opening gzip: %w", err)
	}
	defer gr.Close()

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return extractFromTar(gr)
	}

	data, err := limitedRead(gr)
	if err != nil {
		return nil, "", fmt.Errorf("decompressing gzip: %w", err)
	}
	name := filepath.Base(path)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return data, name, nil
}

func extractFromTar(r io.Reader) ([]byte, string, error) {
	tr := tar.NewReader(r)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil, "", ErrNoROM
		}
		if err != nil {
			return nil, "", fmt.Errorf("reading tar entry: %w", err)
		}
		if header.Typeflag != tar.TypeReg || !isROMFile(header.Name) {
			continue
		}
		return readEntry(header.Name, func() (io.ReadCloser, error) { return io.NopCloser(tr), nil })
	}
}

func extractFromRAR(path string) ([]byte, string, error) {
	r, err := rardecode.OpenReader(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening rar: %w", err)
	}
	defer r.Close()

	for {
		header, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil, "", ErrNoROM
		}
		if err != nil {
			return nil, "", fmt.Errorf("reading rar entry: %w", err)
		}
		if header.IsDir || !isROMFile(header.Name) {
			continue
		}
		return readEntry(header.Name, func() (io.ReadCloser, error) { return io.NopCloser(r), nil })
	}
}
