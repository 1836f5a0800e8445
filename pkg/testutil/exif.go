package testutil

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"sort"
	"testing"

	"github.com/lucas-albers-lz4/imagelink/pkg/fileutil"
	"github.com/spf13/afero"
)

// ExifFields selects the ASCII tags written into a fixture. Empty fields are omitted.
type ExifFields struct {
	Make              string // IFD0 0x010F
	DateTime          string // IFD0 0x0132
	DateTimeOriginal  string // Exif IFD 0x9003
	DateTimeDigitized string // Exif IFD 0x9004
}

const (
	tagMake              = 0x010F
	tagDateTime          = 0x0132
	tagExifIFDPointer    = 0x8769
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004

	typeASCII = 2
	typeLong  = 4
)

type asciiEntry struct {
	tag   uint16
	value string
}

// ExifTIFF returns a little-endian TIFF structure holding the given fields:
// IFD0 (Make, DateTime, Exif pointer) followed by the Exif sub-IFD.
func ExifTIFF(f ExifFields) []byte {
	var ifd0, sub []asciiEntry
	if f.Make != "" {
		ifd0 = append(ifd0, asciiEntry{tagMake, f.Make})
	}
	if f.DateTime != "" {
		ifd0 = append(ifd0, asciiEntry{tagDateTime, f.DateTime})
	}
	if f.DateTimeOriginal != "" {
		sub = append(sub, asciiEntry{tagDateTimeOriginal, f.DateTimeOriginal})
	}
	if f.DateTimeDigitized != "" {
		sub = append(sub, asciiEntry{tagDateTimeDigitized, f.DateTimeDigitized})
	}

	n0 := len(ifd0)
	if len(sub) > 0 {
		n0++ // Exif pointer
	}
	ifd0Off := uint32(8)
	subOff := ifd0Off + uint32(2+12*n0+4)
	dataOff := subOff
	if len(sub) > 0 {
		dataOff += uint32(2 + 12*len(sub) + 4)
	}

	var data bytes.Buffer
	type rawEntry struct {
		tag, typ   uint16
		count, val uint32
		inline     []byte
	}
	place := func(e asciiEntry) rawEntry {
		b := append([]byte(e.value), 0)
		if len(b) <= 4 {
			return rawEntry{tag: e.tag, typ: typeASCII, count: uint32(len(b)), inline: b}
		}
		off := dataOff + uint32(data.Len())
		data.Write(b)
		if data.Len()%2 == 1 {
			data.WriteByte(0)
		}
		return rawEntry{tag: e.tag, typ: typeASCII, count: uint32(len(b)), val: off}
	}

	var e0, e1 []rawEntry
	for _, e := range ifd0 {
		e0 = append(e0, place(e))
	}
	if len(sub) > 0 {
		e0 = append(e0, rawEntry{tag: tagExifIFDPointer, typ: typeLong, count: 1, val: subOff})
		for _, e := range sub {
			e1 = append(e1, place(e))
		}
	}
	sort.Slice(e0, func(i, j int) bool { return e0[i].tag < e0[j].tag })
	sort.Slice(e1, func(i, j int) bool { return e1[i].tag < e1[j].tag })

	le := binary.LittleEndian
	var out bytes.Buffer
	out.WriteString("II")
	_ = binary.Write(&out, le, uint16(42))
	_ = binary.Write(&out, le, ifd0Off)

	writeIFD := func(entries []rawEntry) {
		_ = binary.Write(&out, le, uint16(len(entries)))
		for _, e := range entries {
			_ = binary.Write(&out, le, e.tag)
			_ = binary.Write(&out, le, e.typ)
			_ = binary.Write(&out, le, e.count)
			if e.inline != nil {
				var v [4]byte
				copy(v[:], e.inline)
				out.Write(v[:])
			} else {
				_ = binary.Write(&out, le, e.val)
			}
		}
		_ = binary.Write(&out, le, uint32(0))
	}
	writeIFD(e0)
	if len(e1) > 0 {
		writeIFD(e1)
	}
	out.Write(data.Bytes())
	return out.Bytes()
}

// ExifJPEG wraps ExifTIFF in a minimal JPEG (SOI, APP1 "Exif", EOI) and pads
// the result with zero bytes after EOI up to size bytes.
func ExifJPEG(f ExifFields, size int) []byte {
	payload := append([]byte("Exif\x00\x00"), ExifTIFF(f)...)
	var out bytes.Buffer
	out.Write([]byte{0xFF, 0xD8, 0xFF, 0xE1})
	_ = binary.Write(&out, binary.BigEndian, uint16(len(payload)+2))
	out.Write(payload)
	out.Write([]byte{0xFF, 0xD9})
	if pad := size - out.Len(); pad > 0 {
		out.Write(make([]byte, pad))
	}
	return out.Bytes()
}

// PlainJPEG returns a JPEG-looking file without any EXIF segment.
func PlainJPEG(size int) []byte {
	b := []byte{0xFF, 0xD8, 0xFF, 0xD9}
	if pad := size - len(b); pad > 0 {
		b = append(b, make([]byte, pad)...)
	}
	return b
}

// WriteFile writes data to path on fs, creating parent directories.
func WriteFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), fileutil.ReadWriteExecuteUserReadExecuteOthers); err != nil {
		t.Fatalf("mkdir for fixture %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, data, fileutil.ReadWriteUserReadOthers); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}
}
