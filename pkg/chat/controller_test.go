package chat_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
)

func flaggedAI(content string) chat.Message {
	msg := chat.NewAIMessage(content)
	msg.Regen = true
	return msg
}

func contents(req chat.Request) []string {
	out := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		out = append(out, m.Content)
	}
	return out
}

var _ = Describe("Controller", func() {
	var (
		store      *chat.Store
		controller *chat.Controller
	)

	seed := func(messages ...chat.Message) {
		conv := chat.NewConversation()
		for _, m := range messages {
			conv = chat.AddMessage(conv, m)
		}
		store.Store(conv)
	}

	BeforeEach(func() {
		store = chat.NewStore()
		controller = chat.NewController(store)
	})

	It("should start in normal mode", func() {
		Expect(controller.RegenerateTarget()).To(Equal(chat.NoRegenerateTarget))
		Expect(controller.Regenerating()).To(BeFalse())
		Expect(controller.Store()).To(BeIdenticalTo(store))
	})

	Describe("Submit", func() {
		It("should append a Human message", func() {
			msg := controller.Submit("안녕")

			conv := store.Load()
			Expect(chat.GetMessageCount(conv)).To(Equal(1))
			Expect(conv.Messages[0]).To(Equal(msg))
			Expect(msg.IsHuman()).To(BeTrue())
		})
	})

	Describe("BuildRequest", func() {
		Context("in normal mode", func() {
			It("should send the whole transcript as content and role", func() {
				seed(chat.NewHumanMessage("q1"), chat.NewAIMessage("a1"), chat.NewHumanMessage("q2"))

				req := controller.BuildRequest()
				Expect(req.Messages).To(Equal([]chat.RequestMessage{
					{Content: "q1", Role: chat.RoleHuman},
					{Content: "a1", Role: chat.RoleAI},
					{Content: "q2", Role: chat.RoleHuman},
				}))
			})

			It("should send an empty list for an empty transcript", func() {
				req := controller.BuildRequest()
				Expect(req.Messages).NotTo(BeNil())
				Expect(req.Messages).To(BeEmpty())
			})

			It("should restart from the question before a flagged answer", func() {
				seed(
					chat.NewHumanMessage("q1"),
					chat.NewAIMessage("a1"),
					chat.NewHumanMessage("q2"),
					flaggedAI("a2"),
				)

				Expect(contents(controller.BuildRequest())).To(Equal([]string{"q2"}))
			})

			It("should let the last flagged answer win", func() {
				seed(
					chat.NewHumanMessage("q1"),
					flaggedAI("a1"),
					chat.NewHumanMessage("q2"),
					flaggedAI("a2"),
				)

				Expect(contents(controller.BuildRequest())).To(Equal([]string{"q2"}))
			})

			It("should keep collecting after a flagged answer", func() {
				seed(
					chat.NewHumanMessage("q1"),
					flaggedAI("a1"),
					chat.NewHumanMessage("q2"),
				)

				Expect(contents(controller.BuildRequest())).To(Equal([]string{"q1", "q2"}))
			})

			It("should restart empty when no question precedes the flag", func() {
				seed(flaggedAI("a0"), chat.NewHumanMessage("q1"))

				Expect(contents(controller.BuildRequest())).To(Equal([]string{"q1"}))
			})
		})

		Context("in regenerate mode", func() {
			It("should send only the nearest question at or before the target", func() {
				seed(
					chat.NewHumanMessage("q1"),
					chat.NewAIMessage("a1"),
					chat.NewHumanMessage("q2"),
					chat.NewAIMessage("a2"),
				)
				Expect(controller.Regenerate(1)).To(Succeed())

				req := controller.BuildRequest()
				Expect(req.Messages).To(Equal([]chat.RequestMessage{{Content: "q1", Role: chat.RoleHuman}}))
			})

			It("should send nothing when no question precedes the target", func() {
				seed(chat.NewAIMessage("greeting"), chat.NewHumanMessage("q1"))
				Expect(controller.Regenerate(0)).To(Succeed())

				Expect(controller.BuildRequest().Messages).To(BeEmpty())
			})
		})
	})

	Describe("Regenerate", func() {
		BeforeEach(func() {
			seed(chat.NewHumanMessage("q1"), chat.NewAIMessage("a1"))
		})

		It("should flag the target and enter regenerate mode", func() {
			Expect(controller.Regenerate(1)).To(Succeed())

			Expect(controller.RegenerateTarget()).To(Equal(1))
			Expect(store.Load().Messages[1].Regen).To(BeTrue())
			Expect(store.Load().Messages[0].Regen).To(BeFalse())
		})

		It("should keep the flag when cancelled", func() {
			Expect(controller.Regenerate(1)).To(Succeed())
			controller.CancelRegenerate()
			controller.Submit("q2")

			Expect(controller.Regenerating()).To(BeFalse())
			Expect(store.Load().Messages[1].Regen).To(BeTrue())
			Expect(contents(controller.BuildRequest())).To(Equal([]string{"q1", "q2"}))
		})

		DescribeTable("should reject targets that are not AI messages",
			func(index int) {
				err := controller.Regenerate(index)
				Expect(err).To(MatchError(chat.ErrInvalidRegenerateTarget))
				Expect(controller.RegenerateTarget()).To(Equal(chat.NoRegenerateTarget))
			},
			Entry("a question", 0),
			Entry("past the end", 2),
			Entry("negative", -1),
		)
	})

	Describe("Finalize", func() {
		It("should append the joined fragments in normal mode", func() {
			seed(chat.NewHumanMessage("q1"))

			msg := controller.Finalize([]string{"He", "llo"}, 2*time.Second)

			conv := store.Load()
			Expect(chat.GetMessageCount(conv)).To(Equal(2))
			Expect(conv.Messages[1]).To(Equal(msg))
			Expect(msg.Content).To(Equal("Hello"))
			Expect(msg.Regen).To(BeFalse())
			elapsed, ok := msg.Elapsed()
			Expect(ok).To(BeTrue())
			Expect(elapsed).To(Equal(2 * time.Second))
		})

		It("should round-trip a regenerate", func() {
			h0 := chat.NewHumanMessage("q1")
			a0 := chat.NewAIMessage("old")
			seed(h0, a0)

			Expect(controller.Regenerate(1)).To(Succeed())
			controller.Finalize([]string{"new"}, time.Second)

			conv := store.Load()
			Expect(chat.GetMessageCount(conv)).To(Equal(2))
			Expect(conv.Messages[0]).To(Equal(h0))
			Expect(conv.Messages[1].Content).To(Equal("new"))
			Expect(conv.Messages[1].ID).NotTo(Equal(a0.ID))
			Expect(controller.RegenerateTarget()).To(Equal(chat.NoRegenerateTarget))
			for _, m := range conv.Messages {
				Expect(m.Regen).To(BeFalse())
			}
		})

		It("should append if the regenerate target disappeared", func() {
			seed(chat.NewHumanMessage("q1"), chat.NewAIMessage("a1"))
			Expect(controller.Regenerate(1)).To(Succeed())
			seed(chat.NewHumanMessage("q1"))

			controller.Finalize([]string{"a"}, 0)

			Expect(chat.GetMessageCount(store.Load())).To(Equal(2))
			Expect(controller.Regenerating()).To(BeFalse())
		})
	})

	Describe("Fail", func() {
		It("should append the prefixed reason in normal mode", func() {
			seed(chat.NewHumanMessage("q1"))

			msg := controller.Fail("connection reset")

			Expect(msg.Content).To(Equal("오류: connection reset"))
			Expect(msg.IsAI()).To(BeTrue())
			Expect(msg.ElapsedTime).To(BeNil())
			Expect(chat.GetMessageCount(store.Load())).To(Equal(2))
		})

		It("should replace the target in regenerate mode", func() {
			seed(chat.NewHumanMessage("q1"), chat.NewAIMessage("a1"))
			Expect(controller.Regenerate(1)).To(Succeed())

			controller.Fail("timeout")

			conv := store.Load()
			Expect(chat.GetMessageCount(conv)).To(Equal(2))
			Expect(conv.Messages[1].Content).To(Equal("오류: timeout"))
			Expect(conv.Messages[1].Regen).To(BeFalse())
			Expect(controller.Regenerating()).To(BeFalse())
		})
	})
})
