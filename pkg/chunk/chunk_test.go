package chunk_test

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mnemo/pkg/chunk"
	"github.com/papercomputeco/mnemo/pkg/memory"
)

var _ = Describe("Chunker", func() {
	Describe("NewChunker", func() {
		It("rejects a non-positive target size", func() {
			_, err := chunk.NewChunker(0, 0)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, memory.ErrConfiguration)).To(BeTrue())
		})

		It("rejects a negative overlap", func() {
			_, err := chunk.NewChunker(100, -1)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, memory.ErrConfiguration)).To(BeTrue())
		})

		It("rejects overlap equal to or larger than target size", func() {
			_, err := chunk.NewChunker(100, 100)
			Expect(errors.Is(err, memory.ErrConfiguration)).To(BeTrue())

			_, err = chunk.NewChunker(100, 150)
			Expect(errors.Is(err, memory.ErrConfiguration)).To(BeTrue())
		})

		It("accepts zero overlap", func() {
			c, err := chunk.NewChunker(100, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(c).NotTo(BeNil())
		})
	})

	Describe("Chunk", func() {
		It("returns no segments for empty input", func() {
			c, _ := chunk.NewChunker(100, 10)
			Expect(c.Chunk("", nil)).To(BeEmpty())
		})

		It("returns one segment equal to the trimmed input when the text fits", func() {
			c, _ := chunk.NewChunker(100, 10)
			segs := c.Chunk("  hello world  ", nil)
			Expect(segs).To(HaveLen(1))
			Expect(segs[0].Text).To(Equal("hello world"))
			Expect(segs[0].StartOffset).To(Equal(0))
			Expect(segs[0].EndOffset).To(Equal(len("  hello world  ")))
		})

		It("emits a single oversized paragraph whole rather than splitting it", func() {
			long := strings.Repeat("x", 500)
			c, _ := chunk.NewChunker(100, 10)
			segs := c.Chunk(long, nil)
			Expect(segs).To(HaveLen(1))
			Expect(segs[0].Text).To(Equal(long))
		})

		It("assigns each segment a unique id", func() {
			c, _ := chunk.NewChunker(10, 2)
			segs := c.Chunk("aaaa\n\nbbbb\n\ncccc\n\ndddd", nil)
			seen := map[string]bool{}
			for _, s := range segs {
				Expect(s.ID).NotTo(BeEmpty())
				Expect(seen[s.ID]).To(BeFalse())
				seen[s.ID] = true
			}
		})

		It("copies metadata into every segment", func() {
			c, _ := chunk.NewChunker(10, 2)
			meta := memory.Metadata{"filename": "notes.txt"}
			segs := c.Chunk("aaaa\n\nbbbb\n\ncccc", meta)
			Expect(len(segs)).To(BeNumerically(">", 1))
			for _, s := range segs {
				Expect(s.Metadata).To(HaveKeyWithValue("filename", "notes.txt"))
			}

			// Mutating one segment's metadata must not leak into another.
			segs[0].Metadata["filename"] = "other.txt"
			Expect(segs[1].Metadata).To(HaveKeyWithValue("filename", "notes.txt"))
		})

		It("produces the expected boundaries for the A/B/C fixture", func() {
			// "A\n\nB\n\nC" with targetSize=3, overlap=1: A and B fit in one
			// buffer (their combined bare length is 2); C overflows it.
			// The first segment closes as "A\n\nB" and seeds the next buffer
			// with its trailing character.
			c, err := chunk.NewChunker(3, 1)
			Expect(err).NotTo(HaveOccurred())

			segs := c.Chunk("A\n\nB\n\nC", nil)
			Expect(segs).To(HaveLen(2))

			// "A\n\nB" is 4 characters, and the 1-character overlap ("B")
			// starts the next segment at offset 3.
			Expect(segs[0].Text).To(Equal("A\n\nB"))
			Expect(segs[0].StartOffset).To(Equal(0))
			Expect(segs[0].EndOffset).To(Equal(4))

			Expect(segs[1].Text).To(Equal("B\n\nC"))
			Expect(segs[1].StartOffset).To(Equal(3))
			Expect(segs[1].EndOffset).To(Equal(7))
		})

		It("carries the trailing overlap characters into the next segment", func() {
			para := func(ch string) string { return strings.Repeat(ch, 40) }
			text := para("a") + "\n\n" + para("b") + "\n\n" + para("c") + "\n\n" + para("d")

			overlap := 8
			c, _ := chunk.NewChunker(90, overlap)
			segs := c.Chunk(text, nil)
			Expect(len(segs)).To(BeNumerically(">", 1))

			for i := 0; i < len(segs)-1; i++ {
				tail := segs[i].Text[len(segs[i].Text)-overlap:]
				head := segs[i+1].Text[:overlap]
				Expect(head).To(Equal(tail), "segment %d/%d overlap mismatch", i, i+1)
			}
		})

		It("reconstructs the input from non-overlapping portions", func() {
			para := func(ch string) string { return strings.Repeat(ch, 40) }
			text := para("a") + "\n\n" + para("b") + "\n\n" + para("c") + "\n\n" + para("d")

			c, _ := chunk.NewChunker(90, 8)
			segs := c.Chunk(text, nil)
			Expect(len(segs)).To(BeNumerically(">", 1))

			rebuilt := segs[0].Text
			for i := 1; i < len(segs); i++ {
				retained := segs[i-1].EndOffset - segs[i].StartOffset
				rebuilt += segs[i].Text[retained:]
			}
			Expect(rebuilt).To(Equal(text))
		})

		It("keeps offsets strictly ordered", func() {
			c, _ := chunk.NewChunker(20, 5)
			segs := c.Chunk("aaaaaaaaaa\n\nbbbbbbbbbb\n\ncccccccccc", nil)
			for _, s := range segs {
				Expect(s.StartOffset).To(BeNumerically("<", s.EndOffset))
			}
			for i := 1; i < len(segs); i++ {
				Expect(segs[i].StartOffset).To(BeNumerically(">", segs[i-1].StartOffset))
			}
		})
	})
})
