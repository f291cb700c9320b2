package sqlitevec_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mnemo/pkg/logger"
	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/vector"
	"github.com/papercomputeco/mnemo/pkg/vector/sqlitevec"
)

var _ = Describe("SqliteVec Driver", func() {
	var (
		ctx    context.Context
		driver *sqlitevec.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()

		dbPath := filepath.Join(GinkgoT().TempDir(), "mnemo.db")

		var err error
		driver, err = sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     dbPath,
			Dimensions: 3,
		}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		Expect(driver.Close()).To(Succeed())
	})

	Describe("NewDriver", func() {
		It("rejects an empty database path", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{Dimensions: 3}, logger.Nop())
			Expect(err).To(HaveOccurred())
		})

		It("rejects zero dimensions", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "bad.db")
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: dbPath}, logger.Nop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Upsert and Query", func() {
		It("round-trips a point with its payload", func() {
			point := vector.Point{
				ID:     "seg-1",
				Vector: []float32{1, 0, 0},
				Payload: vector.Payload{
					Text:        "hello world",
					DocumentID:  "doc-1",
					StartOffset: 0,
					EndOffset:   11,
					Metadata:    memory.Metadata{"source": "test"},
				},
			}

			Expect(driver.Upsert(ctx, []vector.Point{point})).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0}, 5, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("seg-1"))
			Expect(results[0].Payload.Text).To(Equal("hello world"))
			Expect(results[0].Payload.DocumentID).To(Equal("doc-1"))
			Expect(results[0].Payload.EndOffset).To(Equal(11))
			Expect(results[0].Payload.Metadata).To(HaveKeyWithValue("source", "test"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 0.001))
		})

		It("ranks nearer vectors first", func() {
			points := []vector.Point{
				{ID: "near", Vector: []float32{1, 0, 0}, Payload: vector.Payload{Text: "near", DocumentID: "d"}},
				{ID: "far", Vector: []float32{0, 1, 0}, Payload: vector.Payload{Text: "far", DocumentID: "d"}},
			}
			Expect(driver.Upsert(ctx, points)).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0.1, 0}, 2, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("near"))
			Expect(results[0].Score).To(BeNumerically(">", results[1].Score))
		})

		It("truncates results to topK", func() {
			points := []vector.Point{
				{ID: "a", Vector: []float32{1, 0, 0}, Payload: vector.Payload{DocumentID: "d"}},
				{ID: "b", Vector: []float32{0.9, 0.1, 0}, Payload: vector.Payload{DocumentID: "d"}},
				{ID: "c", Vector: []float32{0.8, 0.2, 0}, Payload: vector.Payload{DocumentID: "d"}},
			}
			Expect(driver.Upsert(ctx, points)).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0}, 2, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
		})

		It("overwrites an existing point on upsert", func() {
			point := vector.Point{
				ID:     "seg-1",
				Vector: []float32{1, 0, 0},
				Payload: vector.Payload{Text: "before", DocumentID: "doc-1"},
			}
			Expect(driver.Upsert(ctx, []vector.Point{point})).To(Succeed())

			point.Vector = []float32{0, 1, 0}
			point.Payload.Text = "after"
			Expect(driver.Upsert(ctx, []vector.Point{point})).To(Succeed())

			results, err := driver.Query(ctx, []float32{0, 1, 0}, 5, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Payload.Text).To(Equal("after"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 0.001))

			stats, err := driver.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Points).To(Equal(uint64(1)))
		})

		It("applies metadata filters conjunctively", func() {
			points := []vector.Point{
				{
					ID: "a", Vector: []float32{1, 0, 0},
					Payload: vector.Payload{DocumentID: "d", Metadata: memory.Metadata{"lang": "en", "page": 1}},
				},
				{
					ID: "b", Vector: []float32{1, 0, 0},
					Payload: vector.Payload{DocumentID: "d", Metadata: memory.Metadata{"lang": "en", "page": 2}},
				},
				{
					ID: "c", Vector: []float32{1, 0, 0},
					Payload: vector.Payload{DocumentID: "d", Metadata: memory.Metadata{"lang": "fr", "page": 1}},
				},
			}
			Expect(driver.Upsert(ctx, points)).To(Succeed())

			results, err := driver.Query(ctx, []float32{1, 0, 0}, 10, memory.Metadata{"lang": "en", "page": 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("a"))
		})

		It("rejects non-integral float filter values", func() {
			_, err := driver.Query(ctx, []float32{1, 0, 0}, 10, memory.Metadata{"page": 1.5})
			Expect(err).To(MatchError(vector.ErrBadFilter))
		})

		It("rejects filter values of unsupported kinds", func() {
			_, err := driver.Query(ctx, []float32{1, 0, 0}, 10, memory.Metadata{"tags": []string{"a"}})
			Expect(err).To(MatchError(vector.ErrBadFilter))
		})
	})

	Describe("DeleteByDocument", func() {
		It("removes only the named document's points", func() {
			points := []vector.Point{
				{ID: "a", Vector: []float32{1, 0, 0}, Payload: vector.Payload{DocumentID: "doc-1"}},
				{ID: "b", Vector: []float32{0, 1, 0}, Payload: vector.Payload{DocumentID: "doc-1"}},
				{ID: "c", Vector: []float32{0, 0, 1}, Payload: vector.Payload{DocumentID: "doc-2"}},
			}
			Expect(driver.Upsert(ctx, points)).To(Succeed())

			Expect(driver.DeleteByDocument(ctx, "doc-1")).To(Succeed())

			stats, err := driver.Stats(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Points).To(Equal(uint64(1)))

			results, err := driver.Query(ctx, []float32{0, 0, 1}, 10, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].ID).To(Equal("c"))
		})

		It("is a no-op for an unknown document", func() {
			Expect(driver.DeleteByDocument(ctx, "missing")).To(Succeed())
		})
	})

	Describe("Ping", func() {
		It("succeeds on an open database", func() {
			Expect(driver.Ping(ctx)).To(Succeed())
		})
	})
})
