package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Naming", func() {
	It("should accept hierarchical names", func() {
		Expect(func() { NameMustBeValid("MemSim.Manager") }).NotTo(Panic())
	})

	It("should accept indexed names", func() {
		Expect(func() { NameMustBeValid("Cluster.Node[0]") }).NotTo(Panic())
		Expect(func() { NameMustBeValid("Grid[0][1].Cell[2]") }).NotTo(Panic())
	})

	It("should panic if the name is empty", func() {
		Expect(func() { NameMustBeValid("") }).To(Panic())
	})

	It("should panic if name include underscore", func() {
		Expect(func() { NameMustBeValid("Node_0") }).To(Panic())
	})

	It("should panic if name include dash", func() {
		Expect(func() { NameMustBeValid("Node-0") }).To(Panic())
	})

	It("should panic if name is not capitalized CamelCase", func() {
		Expect(func() { NameMustBeValid("node0") }).To(Panic())
	})

	It("should have paired square brackets", func() {
		Expect(func() { NameMustBeValid("Node[0") }).To(Panic())
		Expect(func() { NameMustBeValid("Node0]") }).To(Panic())
	})

	It("should require integer indices", func() {
		Expect(func() { NameMustBeValid("Node[x]") }).To(Panic())
	})

	It("should panic if element name is empty", func() {
		Expect(func() { NameMustBeValid("Node..Zero") }).To(Panic())
	})

	It("should build name", func() {
		Expect(BuildName("", "MemSim")).To(Equal("MemSim"))
		Expect(BuildName("MemSim", "Manager")).To(Equal("MemSim.Manager"))
	})

	It("should build name with index", func() {
		Expect(BuildNameWithIndex("", "Node", 0)).To(Equal("Node[0]"))
		Expect(BuildNameWithIndex("Cluster", "Node", 0)).
			To(Equal("Cluster.Node[0]"))
	})
})
