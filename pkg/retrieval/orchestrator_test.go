package retrieval_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mnemo/pkg/logger"
	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/retrieval"
	testutils "github.com/papercomputeco/mnemo/pkg/utils/test"
)

var _ = Describe("Orchestrator", func() {
	var (
		ctx      context.Context
		embedder *testutils.MockEmbedder
		driver   *testutils.MockVectorDriver
		store    *testutils.MockCache
		orch     *retrieval.Orchestrator
	)

	BeforeEach(func() {
		ctx = context.Background()
		embedder = testutils.NewMockEmbedder()
		driver = testutils.NewMockVectorDriver()
		store = testutils.NewMockCache()

		var err error
		orch, err = retrieval.NewOrchestrator(embedder, driver, store, retrieval.Config{}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewOrchestrator", func() {
		It("requires an embedder", func() {
			_, err := retrieval.NewOrchestrator(nil, driver, store, retrieval.Config{}, logger.Nop())
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("requires a vector driver", func() {
			_, err := retrieval.NewOrchestrator(embedder, nil, store, retrieval.Config{}, logger.Nop())
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("accepts a nil cache", func() {
			o, err := retrieval.NewOrchestrator(embedder, driver, nil, retrieval.Config{}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())
			Expect(o).NotTo(BeNil())
		})
	})

	Describe("Ingest", func() {
		It("embeds all segments in a single batch call and stores them", func() {
			segments := []memory.Segment{
				{ID: "s1", Text: "first", StartOffset: 0, EndOffset: 5},
				{ID: "s2", Text: "second", StartOffset: 4, EndOffset: 10},
			}

			count, err := orch.Ingest(ctx, "doc-1", segments)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(2))

			Expect(embedder.BatchCalls).To(Equal(1))
			Expect(embedder.EmbedCalls).To(BeZero())

			Expect(driver.Points).To(HaveLen(2))
			Expect(driver.Points[0].ID).To(Equal("s1"))
			Expect(driver.Points[0].Vector).NotTo(BeEmpty())
			Expect(driver.Points[0].Payload.DocumentID).To(Equal("doc-1"))
			Expect(driver.Points[1].ID).To(Equal("s2"))
		})

		It("skips segments that are empty after trimming", func() {
			segments := []memory.Segment{
				{ID: "s1", Text: "keep"},
				{ID: "s2", Text: "   "},
				{ID: "s3", Text: ""},
			}

			count, err := orch.Ingest(ctx, "doc-1", segments)
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
			Expect(driver.Points).To(HaveLen(1))
			Expect(driver.Points[0].ID).To(Equal("s1"))
		})

		It("does nothing when every segment is empty", func() {
			count, err := orch.Ingest(ctx, "doc-1", []memory.Segment{{ID: "s1", Text: " "}})
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(BeZero())
			Expect(embedder.BatchCalls).To(BeZero())
			Expect(driver.UpsertCalls).To(BeZero())
		})

		It("reports an embedding failure without storing anything", func() {
			embedder.FailOn = "bad"

			_, err := orch.Ingest(ctx, "doc-1", []memory.Segment{
				{ID: "s1", Text: "good"},
				{ID: "s2", Text: "bad"},
			})
			Expect(err).To(MatchError(memory.ErrEmbedding))
			Expect(driver.UpsertCalls).To(BeZero())
		})

		It("reports a storage failure distinctly", func() {
			driver.FailUpsert = true

			_, err := orch.Ingest(ctx, "doc-1", []memory.Segment{{ID: "s1", Text: "text"}})
			Expect(err).To(MatchError(memory.ErrRetrieval))
		})

		It("does not duplicate points when the same segments are ingested twice", func() {
			segments := []memory.Segment{
				{ID: "s1", Text: "first"},
				{ID: "s2", Text: "second"},
			}

			_, err := orch.Ingest(ctx, "doc-1", segments)
			Expect(err).NotTo(HaveOccurred())
			_, err = orch.Ingest(ctx, "doc-1", segments)
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Points).To(HaveLen(2))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			_, err := orch.Ingest(ctx, "doc-1", []memory.Segment{
				{ID: "s1", Text: "the quick brown fox", StartOffset: 0, EndOffset: 19},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects empty query text", func() {
			_, err := orch.Search(ctx, memory.SearchQuery{Text: "  ", TopK: 5})
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("rejects a non-positive topK", func() {
			_, err := orch.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 0})
			Expect(err).To(MatchError(memory.ErrConfiguration))
		})

		It("returns results from the index on a miss", func() {
			results, err := orch.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Segment.Text).To(Equal("the quick brown fox"))
			Expect(results[0].DocumentID).To(Equal("doc-1"))
			Expect(store.SetCalls).To(Equal(1))
		})

		It("serves a repeated identical search entirely from the cache", func() {
			first, err := orch.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 5})
			Expect(err).NotTo(HaveOccurred())

			embedCallsBefore := embedder.EmbedCalls
			queryCallsBefore := driver.QueryCalls

			second, err := orch.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))

			Expect(embedder.EmbedCalls).To(Equal(embedCallsBefore))
			Expect(driver.QueryCalls).To(Equal(queryCallsBefore))
		})

		It("shares cache entries across filter insertion orders", func() {
			_, err := orch.Search(ctx, memory.SearchQuery{
				Text: "fox", TopK: 5,
				Filter: memory.Metadata{"a": "1", "b": "2"},
			})
			Expect(err).NotTo(HaveOccurred())

			queryCallsBefore := driver.QueryCalls

			_, err = orch.Search(ctx, memory.SearchQuery{
				Text: "fox", TopK: 5,
				Filter: memory.Metadata{"b": "2", "a": "1"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(driver.QueryCalls).To(Equal(queryCallsBefore))
		})

		It("degrades to direct retrieval when the cache is unavailable", func() {
			store.Fail = true

			results, err := orch.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(driver.QueryCalls).To(Equal(1))
		})

		It("surfaces an index failure instead of returning empty results", func() {
			driver.FailQuery = true

			_, err := orch.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 5})
			Expect(err).To(MatchError(memory.ErrRetrieval))
		})

		It("truncates segment text to the preview length", func() {
			short, err := retrieval.NewOrchestrator(embedder, driver, testutils.NewMockCache(),
				retrieval.Config{PreviewLength: 9}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			results, err := short.Search(ctx, memory.SearchQuery{Text: "fox", TopK: 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Segment.Text).To(Equal("the quick..."))
		})
	})
})
