package servecmder

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("NewServeCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))
	})

	It("registers the broker list as a plain string flag", func() {
		cmd := NewServeCmd()

		flag := cmd.Flags().Lookup("eventstream-brokers")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Value.Type()).To(Equal("string"))
	})

	It("registers every flag in the bound-key registry", func() {
		cmd := NewServeCmd()

		for _, key := range serveBoundKeys {
			def, ok := serveFlags[key]
			Expect(ok).To(BeTrue(), "registry key %q has no flag definition", key)
			Expect(cmd.Flags().Lookup(def.Name)).NotTo(BeNil(), "flag %q is not registered", def.Name)
		}
	})
})

var _ = Describe("splitBrokers", func() {
	It("splits a comma-separated broker list", func() {
		Expect(splitBrokers("kafka-1:9092,kafka-2:9092")).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
	})

	It("trims whitespace around entries", func() {
		Expect(splitBrokers(" kafka-1:9092 , kafka-2:9092 ")).To(Equal([]string{"kafka-1:9092", "kafka-2:9092"}))
	})

	It("drops empty entries", func() {
		Expect(splitBrokers("kafka-1:9092,,")).To(Equal([]string{"kafka-1:9092"}))
	})

	It("returns an empty list for an empty value", func() {
		Expect(splitBrokers("")).To(BeEmpty())
	})
})
