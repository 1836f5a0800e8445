package metadata

import (
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	goexif "github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// GoexifDecoder reads EXIF from JPEG APP1 segments and bare TIFF files.
// Only the primary image directories are loaded, never the thumbnail's.
type GoexifDecoder struct{}

// Name implements Decoder.
func (GoexifDecoder) Name() string { return "goexif" }

// Decode implements Decoder.
func (d GoexifDecoder) Decode(r io.ReadSeeker) (*Record, error) {
	x, err := goexif.Decode(r)
	if err != nil && x == nil {
		return nil, errors.Wrap(err, "goexif decode")
	}
	// A non-nil x with an error means a sub-IFD was damaged; the main
	// directory is still usable.
	w := &tagCollector{}
	if err := x.Walk(w); err != nil {
		return nil, errors.Wrap(err, "goexif walk")
	}
	sort.Slice(w.tags, func(i, j int) bool { return w.tags[i].Name < w.tags[j].Name })
	return &Record{Decoder: d.Name(), Tags: w.tags}, nil
}

type tagCollector struct {
	tags []Tag
}

func (c *tagCollector) Walk(name goexif.FieldName, tag *tiff.Tag) error {
	c.tags = append(c.tags, Tag{Name: string(name), Value: renderTiffTag(tag)})
	return nil
}

func renderTiffTag(tag *tiff.Tag) string {
	if tag == nil {
		return ""
	}
	if tag.Format() == tiff.StringVal {
		if s, err := tag.StringVal(); err == nil {
			return strings.TrimRight(s, "\x00 ")
		}
	}
	return tag.String()
}
