package integration

import (
	"context"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/chat"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/nodes"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/session"
	"github.com/skcc-wooyoungmoon/agentframework-sub012/pkg/transport"
)

var _ = Describe("Streaming from Ollama", func() {
	var (
		t         *transport.LLMTransport
		testModel string
	)

	BeforeEach(func() {
		// Skip integration tests unless explicitly enabled
		if !integrationEnabled() {
			Skip("Integration tests skipped. Set INTEGRATION_TEST=true to run.")
		}

		var url string
		url, testModel = ollamaSettings()

		var err error
		t, err = transport.NewOllamaTransport(url, testModel, "llm")
		if err != nil {
			Skip("Failed to create Ollama transport: " + err.Error())
		}
	})

	It("should stream an answer progressively", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		var previews []string
		view := session.NewChatView(t, nodes.NewProjector(nil, nodes.WithAutoRegister()), session.ObserverFuncs{
			Preview: func(text string) { previews = append(previews, text) },
		})

		result, err := view.Submit(ctx, "Reply with a short greeting of about ten words.")
		Expect(err).NotTo(HaveOccurred())
		if result.Err != nil && strings.Contains(result.Err.Error(), "connection refused") {
			Skip("Ollama server not available: " + result.Err.Error())
		}
		Expect(result.Err).NotTo(HaveOccurred(), "model %s", testModel)

		Expect(result.Answer.Content).NotTo(BeEmpty())
		Expect(previews).NotTo(BeEmpty())
		Expect(previews[len(previews)-1]).To(Equal(result.Answer.Content))

		llm, ok := view.Nodes().Node("auto-1")
		Expect(ok).To(BeTrue(), "the model node is registered on first use")
		Expect(llm.Name).To(Equal("llm"))
		Expect(llm.Log).To(HaveLen(2))
		Expect(chat.GetMessageCount(view.Transcript())).To(Equal(2))
	})
})
