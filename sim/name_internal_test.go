package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse name", func() {
		name := ParseName("Bridge[0].Feed[0]")
		Expect(name.Tokens[0].ElemName).To(Equal("Bridge"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0}))
		Expect(name.Tokens[1].ElemName).To(Equal("Feed"))
		Expect(name.Tokens[1].Index).To(Equal([]int{0}))
	})

	It("should parse multi-dimensional index", func() {
		name := ParseName("Bridge[0][1].Feed[0][1]")
		Expect(name.Tokens[0].ElemName).To(Equal("Bridge"))
		Expect(name.Tokens[0].Index).To(Equal([]int{0, 1}))
		Expect(name.Tokens[1].ElemName).To(Equal("Feed"))
		Expect(name.Tokens[1].Index).To(Equal([]int{0, 1}))
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic if name includes underscore", func() {
		Expect(func() { NameMustBeValid("Bridge_0") }).To(Panic())
	})

	It("should panic if name includes dash", func() {
		Expect(func() { NameMustBeValid("Bridge-0") }).To(Panic())
	})

	It("should panic if name is not capitalized CamelCase", func() {
		Expect(func() { NameMustBeValid("bridge0") }).To(Panic())
	})

	It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("Bridge[0") }).To(Panic())
	})

	It("should reject unpaired closing brackets", func() {
		Expect(func() { NameMustBeValid("Bridge0]") }).To(Panic())
	})

	It("should panic if element name is empty", func() {
		Expect(func() { NameMustBeValid("Bridge..0") }).To(Panic())
	})

	It("should build name", func() {
		Expect(BuildName("", "Bridge")).To(Equal("Bridge"))
		Expect(BuildName("Bridge", "Feed")).To(Equal("Bridge.Feed"))
	})

	It("should build name with index", func() {
		Expect(BuildNameWithIndex("", "Bridge", 0)).To(Equal("Bridge[0]"))
		Expect(BuildNameWithIndex("Bridge", "Feed", 0)).
			To(Equal("Bridge.Feed[0]"))
	})
})
