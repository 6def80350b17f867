package stt_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/nlowry/go-statecore/identity"
	"github.com/nlowry/go-statecore/stt"
)

func TestLifecycleSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "StateTransitionTable Lifecycle Suite")
}

var _ = Describe("Table builder lifecycle", func() {
	var (
		table                  *stt.Table
		s1, s2, i1, m1, f1, f2 identity.Identity
	)

	BeforeEach(func() {
		table = stt.New(16)
		s1 = identity.New(identity.KindState, "S1")
		s2 = identity.New(identity.KindState, "S2")
		i1 = identity.New(identity.KindInterface, "I1")
		m1 = identity.New(identity.KindMessage, "M1")
		f1 = identity.New(identity.KindFunction, "F1")
		f2 = identity.New(identity.KindFunction, "F2")
	})

	Context("when freshly created", func() {
		It("is not linked", func() {
			Expect(table.IsLinked()).To(BeFalse())
		})

		It("accepts a first SetTransition, seeding the root", func() {
			Expect(table.SetTransition(s1, i1, m1, f1, s2)).To(Succeed())
		})

		It("rejects SetNextStates-then-SetTransition ordering once linked", func() {
			Expect(table.SetTransition(s1, i1, m1, f1, s2)).To(Succeed())
			Expect(table.SetNextStates()).To(Succeed())
			Expect(table.SetTransition(s1, i1, m1, f2, s2)).To(MatchError(stt.ErrInvalidState))
		})
	})

	Context("after at least one transition (Built)", func() {
		BeforeEach(func() {
			Expect(table.SetTransition(s1, i1, m1, f1, s2)).To(Succeed())
		})

		It("still accepts further transitions", func() {
			m2 := identity.New(identity.KindMessage, "M2")
			Expect(table.SetTransition(s1, i1, m2, f2, s1)).To(Succeed())
		})

		It("rejects a duplicate triple without mutating the table", func() {
			used := table.Used()
			err := table.SetTransition(s1, i1, m1, f2, s1)
			Expect(err).To(MatchError(stt.ErrDuplicateTransition))
			Expect(table.Used()).To(Equal(used))
		})

		It("transitions to Linked on SetNextStates", func() {
			Expect(table.IsLinked()).To(BeFalse())
			Expect(table.SetNextStates()).To(Succeed())
			Expect(table.IsLinked()).To(BeTrue())
		})
	})

	Context("once Linked", func() {
		BeforeEach(func() {
			Expect(table.SetTransition(s1, i1, m1, f1, s2)).To(Succeed())
			Expect(table.SetNextStates()).To(Succeed())
		})

		It("resolves the transition it was built with", func() {
			fn, next, ok := table.Resolve(s1, i1, m1)
			Expect(ok).To(BeTrue())
			Expect(fn.Equal(f1)).To(BeTrue())
			Expect(next.Equal(s2)).To(BeTrue())
		})

		It("synthesized a dead state for the unregistered next-state S2", func() {
			states := table.States()
			Expect(states).To(HaveLen(2))
			Expect(states[1].Equal(s2)).To(BeTrue())
			_, _, ok := table.Resolve(s2, i1, m1)
			Expect(ok).To(BeFalse())
		})

		It("rejects a second SetNextStates call", func() {
			Expect(table.SetNextStates()).To(MatchError(stt.ErrInvalidState))
		})
	})
})
