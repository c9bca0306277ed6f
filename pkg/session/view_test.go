package session_test

import (
	"bytes"
	"context"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/session"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/stream/protocol"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/testutil"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/testutil/fixtures"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

var _ = Describe("ChatView", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("should run a question through to an answer", func() {
		rec := &recording{}
		view := session.NewChatView(testutil.NewFakeTransport(fixtures.HelloStream...), nil, rec.observer())

		result, err := view.Submit(ctx, "인사해 줘")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Err).NotTo(HaveOccurred())
		Expect(result.Answer.Content).To(Equal("Hello"))
		Expect(kinds(result.Persisted)).To(Equal([]protocol.Kind{protocol.KindRunStarted, protocol.KindStreamDone}))
		Expect(result.Stats.RunID).To(Equal("r1"))

		conv := view.Transcript()
		Expect(chat.GetMessageCount(conv)).To(Equal(2))
		Expect(conv.Messages[0].Content).To(Equal("인사해 줘"))
		Expect(conv.Messages[1]).To(Equal(result.Answer))

		Expect(rec.transcripts).To(HaveLen(2), "once for the question, once for the answer")
		Expect(view.Active()).To(BeFalse())
	})

	It("should copy the raw stream to its trace", func() {
		var trace bytes.Buffer
		view := session.NewChatView(testutil.NewFakeTransport(fixtures.HelloStream...), nil, nil)
		view.SetTrace(stream.NewWriterHandler(&trace))

		_, err := view.Submit(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(trace.String()).To(Equal(strings.Join(fixtures.HelloStream, "")))

		view.SetTrace(nil)
		_, err = view.Submit(ctx, "q2")
		Expect(err).NotTo(HaveOccurred())
		Expect(trace.String()).To(Equal(strings.Join(fixtures.HelloStream, "")))
	})

	It("should reject a blank question", func() {
		view := session.NewChatView(testutil.NewFakeTransport(), nil, nil)

		_, err := view.Submit(ctx, "  \n")
		Expect(err).To(MatchError(session.ErrEmptyQuestion))
		Expect(chat.IsEmpty(view.Transcript())).To(BeTrue())
	})

	It("should report transport failures in the result, not as an error", func() {
		fake := testutil.NewFakeTransport(fixtures.HelloStream...)
		fake.SetFailAfter(1, "upstream closed")
		view := session.NewChatView(fake, nil, nil)

		result, err := view.Submit(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Err).To(MatchError("upstream closed"))
		Expect(result.Answer.Content).To(Equal("오류: upstream closed"))
	})

	It("should reject a question while another is streaming", func() {
		fake := testutil.NewFakeTransport(fixtures.HelloStream...)
		paused := fake.PauseAfter(1)
		view := session.NewChatView(fake, nil, nil)

		done := make(chan session.Result, 1)
		go func() {
			defer GinkgoRecover()
			result, err := view.Submit(ctx, "first")
			Expect(err).NotTo(HaveOccurred())
			done <- result
		}()

		Eventually(paused).Should(BeClosed())
		Expect(view.Active()).To(BeTrue())

		_, err := view.Submit(ctx, "second")
		Expect(err).To(MatchError(session.ErrSessionInFlight))
		_, err = view.Regenerate(ctx, 1)
		Expect(err).To(MatchError(session.ErrSessionInFlight))

		fake.Resume()
		var result session.Result
		Eventually(done).Should(Receive(&result))
		Expect(result.Answer.Content).To(Equal("Hello"))
		Expect(chat.GetMessageCount(view.Transcript())).To(Equal(2))
		Expect(view.Active()).To(BeFalse())
	})

	It("should drop a stream that finishes after the view closed", func() {
		g := graph()
		projector := nodes.NewProjector(g)
		fake := testutil.NewFakeTransport(
			"data: {\"node\":\"retriever\",\"progress\":\"검색\"}\n",
			"data: {\"final_result\":\"late\"}\n",
			"data: {\"node\":\"writer\",\"progress\":\"late\"}\n",
		)
		paused := fake.PauseAfter(1)
		view := session.NewChatView(fake, projector, nil)

		done := make(chan struct{})
		go func() {
			defer GinkgoRecover()
			defer close(done)
			_, err := view.Submit(ctx, "q")
			Expect(err).NotTo(HaveOccurred())
		}()

		Eventually(paused).Should(BeClosed())
		retriever, _ := view.Nodes().Node("n-retriever")
		Expect(retriever.IsRunning).To(BeTrue())

		view.Close()
		fake.Resume()
		Eventually(done).Should(BeClosed())

		Expect(chat.GetMessageCount(view.Transcript())).To(Equal(1))
		for _, st := range view.Nodes().Nodes() {
			Expect(st.IsRunning || st.IsDone || st.IsError).To(BeFalse())
			Expect(st.Log).To(BeEmpty())
		}
		Expect(view.Active()).To(BeFalse())
	})

	Describe("Regenerate", func() {
		var (
			calls    atomic.Int32
			requests []chat.Request
			view     *session.ChatView
		)

		BeforeEach(func() {
			calls.Store(0)
			requests = nil
			answering := transport.Func(func(_ context.Context, req chat.Request, h stream.Handler) error {
				requests = append(requests, req)
				n := calls.Add(1)
				if err := h.OnChunk("data: {\"final_result\":\"answer " + string(rune('0'+n)) + "\"}\n"); err != nil {
					return err
				}
				return h.OnComplete("")
			})
			view = session.NewChatView(answering, nil, nil)
		})

		It("should replace the answer in place", func() {
			_, err := view.Submit(ctx, "q1")
			Expect(err).NotTo(HaveOccurred())
			original := view.Transcript()

			result, err := view.Regenerate(ctx, 1)
			Expect(err).NotTo(HaveOccurred())

			conv := view.Transcript()
			Expect(chat.GetMessageCount(conv)).To(Equal(2))
			Expect(conv.Messages[0]).To(Equal(original.Messages[0]))
			Expect(conv.Messages[1].Content).To(Equal("answer 2"))
			Expect(conv.Messages[1]).To(Equal(result.Answer))

			Expect(requests).To(HaveLen(2))
			Expect(requests[1].Messages).To(Equal([]chat.RequestMessage{{Content: "q1", Role: chat.RoleHuman}}))
		})

		It("should reject a target that is not an answer", func() {
			_, err := view.Submit(ctx, "q1")
			Expect(err).NotTo(HaveOccurred())

			_, err = view.Regenerate(ctx, 0)
			Expect(err).To(MatchError(chat.ErrInvalidRegenerateTarget))
			Expect(view.Active()).To(BeFalse())
			Expect(requests).To(HaveLen(1))
		})
	})
})
