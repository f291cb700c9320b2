// Package chunk splits raw document text into overlapping segments.
//
// The splitter works on paragraph boundaries (a blank line, i.e. two
// consecutive newlines) and never splits inside a paragraph. Paragraphs are
// accumulated into a buffer; when appending the next paragraph would push
// the buffer past the target size, the buffer is closed into a segment and
// the next buffer is seeded with the trailing overlap characters of the
// closed one. A single paragraph larger than the target size is emitted as
// one oversized segment rather than force-split, so segments can exceed the
// target size but overlap bookkeeping stays exact.
package chunk

import (
	"fmt"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/papercomputeco/mnemo/pkg/memory"
)

const (
	// DefaultTargetSize is the default segment size in characters.
	DefaultTargetSize = 1000

	// DefaultOverlap is the default number of characters carried over
	// between consecutive segments.
	DefaultOverlap = 200

	// separator joins paragraphs inside an accumulated buffer.
	separator = "\n\n"
)

// Chunker splits text into overlapping segments. It holds no mutable state
// and is safe for concurrent use.
type Chunker struct {
	targetSize int
	overlap    int
}

// NewChunker creates a chunker with the given target segment size and
// overlap, both in characters. Requires targetSize > 0, overlap >= 0, and
// overlap < targetSize.
func NewChunker(targetSize, overlap int) (*Chunker, error) {
	if targetSize <= 0 {
		return nil, fmt.Errorf("%w: target size must be positive, got %d", memory.ErrConfiguration, targetSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", memory.ErrConfiguration, overlap)
	}
	if overlap >= targetSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than target size %d", memory.ErrConfiguration, overlap, targetSize)
	}

	return &Chunker{targetSize: targetSize, overlap: overlap}, nil
}

// Chunk splits text into ordered segments. Each segment carries a copy of
// meta plus character offsets into the consumed input; consecutive segments
// overlap by the retained overlap length. Empty input yields no segments.
func (c *Chunker) Chunk(text string, meta memory.Metadata) []memory.Segment {
	if text == "" {
		return nil
	}

	paragraphs := strings.Split(text, separator)

	var segments []memory.Segment
	var buf string
	start := 0

	for _, para := range paragraphs {
		if len(buf)+len(para) > c.targetSize {
			if buf != "" {
				segments = append(segments, c.newSegment(buf, start, meta))

				// Seed the next buffer with the trailing overlap of the
				// closed one, or the whole buffer when it is shorter.
				overlapText := buf
				if len(buf) > c.overlap {
					overlapText = buf[len(buf)-c.overlap:]
				}
				start = start + len(buf) - len(overlapText)
				buf = overlapText + separator + para
			} else {
				buf = para
			}
		} else {
			if buf == "" {
				buf = para
			} else {
				buf += separator + para
			}
		}
	}

	if buf != "" {
		segments = append(segments, c.newSegment(buf, start, meta))
	}

	return segments
}

func (c *Chunker) newSegment(buf string, start int, meta memory.Metadata) memory.Segment {
	var m memory.Metadata
	if meta != nil {
		m = maps.Clone(meta)
	}

	return memory.Segment{
		ID:          uuid.NewString(),
		Text:        strings.TrimSpace(buf),
		StartOffset: start,
		EndOffset:   start + len(buf),
		Metadata:    m,
	}
}
