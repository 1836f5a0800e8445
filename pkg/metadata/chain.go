package metadata

import (
	"errors"
	"fmt"
	"io"

	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
)

// ChainDecoder tries each decoder in order, rewinding the stream between
// attempts, and returns the first record that holds at least one tag.
type ChainDecoder []Decoder

// Default returns the decoder chain used by the CLI.
func Default() ChainDecoder {
	return ChainDecoder{GoexifDecoder{}, ScanDecoder{}}
}

// Name implements Decoder.
func (c ChainDecoder) Name() string { return "chain" }

// Decode implements Decoder. When every decoder fails the error matches
// ErrNoMetadata and carries each decoder's reason.
func (c ChainDecoder) Decode(r io.ReadSeeker) (*Record, error) {
	errs := make([]error, 0, len(c))
	for _, d := range c {
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind for %s: %w", d.Name(), err)
		}
		rec, err := d.Decode(r)
		if err != nil {
			debug.Printf("decoder %s: %v", d.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))
			continue
		}
		if rec == nil || len(rec.Tags) == 0 {
			errs = append(errs, fmt.Errorf("%s: no tags", d.Name()))
			continue
		}
		return rec, nil
	}
	if len(errs) == 0 {
		return nil, ErrNoMetadata
	}
	return nil, fmt.Errorf("%w: %w", ErrNoMetadata, errors.Join(errs...))
}
