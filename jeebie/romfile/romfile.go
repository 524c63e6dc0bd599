// Package romfile reads Game Boy ROM images from disk, unpacking zip, gzip,
// tar.gz, 7z and rar archives on the way.
package romfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/valerio/jeebie-core/jeebie/emuerr"
)

var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21}
)

// MaxSize is the largest image accepted: 512 banks of 16KiB, the MBC5 limit.
const MaxSize = 8 * 1024 * 1024

// Extensions are the names looked for inside archives.
var Extensions = []string{".gb", ".gbc", ".bin"}

// ErrNoROM is returned when an archive holds no file with a ROM extension.
var ErrNoROM = errors.New("no ROM file found in archive")

// ErrTooLarge is returned when the image exceeds MaxSize.
var ErrTooLarge = errors.New("file exceeds maximum ROM size")

// Format is a container detected from magic bytes or the file name.
type Format int

const (
	Raw Format = iota
	ZIP
	SevenZip
	Gzip
	RAR
)

func (f Format) String() string {
	switch f {
	case ZIP:
		return "zip"
	case SevenZip:
		return "7z"
	case Gzip:
		return "gzip"
	case RAR:
		return "rar"
	}
	return "raw"
}

// Load reads the ROM at path. Archives yield their first entry with one of
// Extensions. The returned name is the base name of the file the image came
// from. A missing path is an emuerr.RomMissing error, everything else that
// prevents reading is emuerr.RomUnreadable.
func Load(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", emuerr.Wrap(emuerr.RomMissing, err, "%s", path)
		}
		return nil, "", emuerr.Wrap(emuerr.RomUnreadable, err, "%s", path)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, "", emuerr.Wrap(emuerr.RomUnreadable, err, "reading header of %s", path)
	}
	format := Detect(header[:n], path)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, "", emuerr.Wrap(emuerr.RomUnreadable, err, "%s", path)
	}

	var (
		data []byte
		name string
	)
	switch format {
	case ZIP:
		data, name, err = extractFromZIP(path)
	case SevenZip:
		data, name, err = extractFrom7z(path)
	case Gzip:
		data, name, err = extractFromGzip(f, path)
	case RAR:
		data, name, err = extractFromRAR(path)
	default:
		data, err = limitedRead(f)
		name = filepath.Base(path)
	}
	if err != nil {
		return nil, "", emuerr.Wrap(emuerr.RomUnreadable, err, "%s (%s)", path, format)
	}
	return data, name, nil
}

// Detect picks the container format from the leading bytes, falling back to
// the file extension. Anything unrecognised is a raw image.
func Detect(header []byte, path string) Format {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return ZIP
	case bytes.HasPrefix(header, magicRAR):
		return RAR
	case bytes.HasPrefix(header, magic7z):
		return SevenZip
	case bytes.HasPrefix(header, magicGzip):
		return Gzip
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return ZIP
	case ".7z":
		return SevenZip
	case ".gz", ".tgz":
		return Gzip
	case ".rar":
		return RAR
	}
	return Raw
}

func isROMFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	return data, nil
}

func readEntry(name string, open func() (io.ReadCloser, error)) ([]byte, string, error) {
	rc, err := open()
	if err != nil {
		return nil, "", fmt.Errorf("opening %s in archive: %w", name, err)
	}
	defer rc.Close()

	data, err := limitedRead(rc)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", name, err)
	}
	return data, filepath.Base(name), nil
}
