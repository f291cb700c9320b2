package retrieval_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/mnemo/pkg/memory"
	"github.com/papercomputeco/mnemo/pkg/retrieval"
)

var _ = Describe("CacheKey", func() {
	It("normalizes query text", func() {
		Expect(retrieval.CacheKey("  Hello World  ", 5, nil)).
			To(Equal("search:hello world:5"))
	})

	It("omits the filter component when no filter is given", func() {
		Expect(retrieval.CacheKey("q", 3, nil)).To(Equal("search:q:3"))
		Expect(retrieval.CacheKey("q", 3, memory.Metadata{})).To(Equal("search:q:3"))
	})

	It("serializes the filter sorted by key", func() {
		key := retrieval.CacheKey("q", 3, memory.Metadata{"source": "web", "author": "amy"})
		Expect(key).To(Equal("search:q:3:author=amy,source=web"))
	})

	It("is independent of filter insertion order", func() {
		a := retrieval.CacheKey("q", 3, memory.Metadata{"a": 1, "b": 2})
		b := retrieval.CacheKey("q", 3, memory.Metadata{"b": 2, "a": 1})
		Expect(a).To(Equal(b))
	})

	It("distinguishes topK values", func() {
		Expect(retrieval.CacheKey("q", 3, nil)).NotTo(Equal(retrieval.CacheKey("q", 4, nil)))
	})
})
