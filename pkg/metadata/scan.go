package metadata

import (
	"errors"
	"fmt"
	"io"
	"strings"

	dexif "github.com/dsoprea/go-exif/v3"
)

// ScanDecoder searches the whole stream for an EXIF header and parses the
// block it finds. It works on containers goexif does not understand (HEIC,
// PNG eXIf chunks, raw formats) at the cost of reading the file to the end.
type ScanDecoder struct{}

// Name implements Decoder.
func (ScanDecoder) Name() string { return "scan" }

// Decode implements Decoder.
func (d ScanDecoder) Decode(r io.ReadSeeker) (rec *Record, err error) {
	// go-exif reports some malformed structures by panicking.
	defer func() {
		if p := recover(); p != nil {
			rec, err = nil, fmt.Errorf("scan decode: %v", p)
		}
	}()

	raw, err := dexif.SearchAndExtractExifWithReader(r)
	if err != nil {
		if errors.Is(err, dexif.ErrNoExif) {
			return nil, ErrNoMetadata
		}
		return nil, fmt.Errorf("scan for exif: %w", err)
	}

	entries, _, err := dexif.GetFlatExifData(raw, &dexif.ScanOptions{})
	if err != nil {
		return nil, fmt.Errorf("parse exif block: %w", err)
	}

	tags := make([]Tag, 0, len(entries))
	for _, e := range entries {
		// IFD1 describes the embedded thumbnail.
		if strings.HasPrefix(e.IfdPath, "IFD1") {
			continue
		}
		value := e.Formatted
		if s, ok := e.Value.(string); ok {
			value = s
		}
		tags = append(tags, Tag{
			Name:  e.TagName,
			IFD:   e.IfdPath,
			Value: strings.TrimRight(value, "\x00 "),
		})
	}
	return &Record{Decoder: d.Name(), Tags: tags}, nil
}
