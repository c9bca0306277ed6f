package chat_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
)

var _ = Describe("Conversation", func() {
	var (
		human chat.Message
		ai    chat.Message
	)

	BeforeEach(func() {
		human = chat.NewHumanMessage("질문")
		ai = chat.NewAIMessage("답변")
	})

	Describe("NewConversation", func() {
		It("should start empty", func() {
			conv := chat.NewConversation()

			Expect(chat.IsEmpty(conv)).To(BeTrue())
			Expect(chat.GetMessageCount(conv)).To(Equal(0))
			_, ok := chat.GetLastMessage(conv)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("AddMessage", func() {
		It("should append without modifying the original", func() {
			original := chat.NewConversation()
			updated := chat.AddMessage(original, human)

			Expect(chat.IsEmpty(original)).To(BeTrue())
			Expect(chat.GetMessages(updated)).To(Equal([]chat.Message{human}))

			last, ok := chat.GetLastMessage(chat.AddMessage(updated, ai))
			Expect(ok).To(BeTrue())
			Expect(last).To(Equal(ai))
		})
	})

	Describe("ReplaceMessage", func() {
		It("should replace in place and keep the length", func() {
			conv := chat.AddMessage(chat.AddMessage(chat.NewConversation(), human), ai)
			replacement := chat.NewAIMessage("새 답변")

			updated, err := chat.ReplaceMessage(conv, 1, replacement)
			Expect(err).NotTo(HaveOccurred())
			Expect(chat.GetMessageCount(updated)).To(Equal(2))
			Expect(updated.Messages[0]).To(Equal(human))
			Expect(updated.Messages[1]).To(Equal(replacement))
			Expect(conv.Messages[1]).To(Equal(ai))
		})

		It("should reject an index out of range", func() {
			conv := chat.AddMessage(chat.NewConversation(), human)

			_, err := chat.ReplaceMessage(conv, 1, ai)
			Expect(err).To(HaveOccurred())
			_, err = chat.ReplaceMessage(conv, -1, ai)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ClearRegen", func() {
		It("should clear every flag on a copy", func() {
			flagged := ai
			flagged.Regen = true
			conv := chat.AddMessage(chat.AddMessage(chat.NewConversation(), human), flagged)

			cleared := chat.ClearRegen(conv)
			Expect(cleared.Messages[1].Regen).To(BeFalse())
			Expect(conv.Messages[1].Regen).To(BeTrue())
		})
	})

	Describe("NearestHumanMessage", func() {
		var conv chat.Conversation

		BeforeEach(func() {
			conv = chat.NewConversation()
			for _, m := range []chat.Message{ai, human, ai, ai} {
				conv = chat.AddMessage(conv, m)
			}
		})

		It("should include the start index", func() {
			found, ok := chat.NearestHumanMessage(conv, 1)
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(human))
		})

		It("should scan backward", func() {
			found, ok := chat.NearestHumanMessage(conv, 3)
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(human))
		})

		It("should report none before the first question", func() {
			_, ok := chat.NearestHumanMessage(conv, 0)
			Expect(ok).To(BeFalse())
			_, ok = chat.NearestHumanMessage(conv, -1)
			Expect(ok).To(BeFalse())
		})

		It("should clamp an index past the end", func() {
			found, ok := chat.NearestHumanMessage(conv, 10)
			Expect(ok).To(BeTrue())
			Expect(found).To(Equal(human))
		})
	})

	Describe("Store", func() {
		It("should publish whole values", func() {
			store := chat.NewStore()
			before := store.Load()

			after := store.Update(func(conv chat.Conversation) chat.Conversation {
				return chat.AddMessage(conv, human)
			})

			Expect(chat.IsEmpty(before)).To(BeTrue())
			Expect(store.Load()).To(Equal(after))
			Expect(chat.GetMessageCount(store.Load())).To(Equal(1))
		})

		It("should start from a seeded transcript", func() {
			seeded := chat.AddMessage(chat.NewConversation(), human)
			store := chat.NewStoreWith(seeded)

			Expect(store.Load()).To(Equal(seeded))
			store.Store(chat.NewConversation())
			Expect(chat.GetMessageCount(seeded)).To(Equal(1))
			Expect(chat.IsEmpty(store.Load())).To(BeTrue())
		})
	})
})
