package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	oai "github.com/openai/openai-go"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

func completionBody(content string) string {
	body := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1760000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message": map[string]any{
					"role":    "assistant",
					"content": content,
					"refusal": nil,
				},
			},
		},
		"usage": map[string]any{
			"prompt_tokens":     12,
			"completion_tokens": 34,
			"total_tokens":      46,
		},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

var _ = Describe("Provider", func() {
	var (
		server   *httptest.Server
		requests atomic.Int32
		lastBody map[string]any
		status   int
		response string
	)

	BeforeEach(func() {
		requests.Store(0)
		lastBody = nil
		status = http.StatusOK
		response = completionBody(`{"summary":"Looks fine","issues":[],"refactoredCode":""}`)

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			defer GinkgoRecover()

			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(HaveSuffix("/chat/completions"))
			Expect(r.Header.Get("Authorization")).To(Equal("Bearer sk-test"))

			raw, err := io.ReadAll(r.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(json.Unmarshal(raw, &lastBody)).To(Succeed())

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, response)
		}))
		DeferCleanup(server.Close)
	})

	newProvider := func() *Provider {
		p, err := NewProvider(Config{
			APIKey:  "sk-test",
			BaseURL: server.URL + "/v1/",
			Model:   "gpt-4o-mini",
		})
		Expect(err).NotTo(HaveOccurred())
		return p
	}

	It("requires an API key", func() {
		_, err := NewProvider(Config{})
		Expect(err).To(HaveOccurred())
	})

	It("defaults the model", func() {
		p, err := NewProvider(Config{APIKey: "sk-test"})
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Model()).To(Equal("gpt-4o-mini"))
		Expect(p.Name()).To(Equal("openai"))
	})

	It("returns the structured review", func() {
		got, err := newProvider().Review(context.Background(), "function add(a,b){return a+b}")

		Expect(err).NotTo(HaveOccurred())
		Expect(got.Summary).To(Equal("Looks fine"))
		Expect(got.Issues).To(BeEmpty())
		Expect(got.HasRefactor()).To(BeFalse())
	})

	It("sends the code with the review prompt and a strict schema", func() {
		_, err := newProvider().Review(context.Background(), "function add(a,b){return a+b}")
		Expect(err).NotTo(HaveOccurred())

		Expect(lastBody["model"]).To(Equal("gpt-4o-mini"))
		Expect(lastBody["max_tokens"]).To(BeNumerically("==", defaultMaxTokens))

		messages := lastBody["messages"].([]any)
		Expect(messages).To(HaveLen(2))
		Expect(messages[0].(map[string]any)["role"]).To(Equal("system"))
		user := messages[1].(map[string]any)
		Expect(user["role"]).To(Equal("user"))
		Expect(user["content"]).To(ContainSubstring("function add(a,b){return a+b}"))

		format := lastBody["response_format"].(map[string]any)
		Expect(format["type"]).To(Equal("json_schema"))
		schema := format["json_schema"].(map[string]any)
		Expect(schema["name"]).To(Equal(schemaName))
		Expect(schema["strict"]).To(BeTrue())
	})

	It("reports malformed content", func() {
		response = completionBody("I think the code is fine.")

		_, err := newProvider().Review(context.Background(), "x := 1")

		Expect(err).To(MatchError(model.ErrMalformedReview))
	})

	It("does not retry failed calls", func() {
		status = http.StatusInternalServerError
		response = `{"error":{"message":"boom","type":"server_error"}}`

		_, err := newProvider().Review(context.Background(), "x := 1")

		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, model.ErrMalformedReview)).To(BeFalse())
		var apiErr *oai.Error
		Expect(errors.As(err, &apiErr)).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusInternalServerError))
		Expect(requests.Load()).To(Equal(int32(1)))
	})

	It("honours context cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newProvider().Review(ctx, "x := 1")

		Expect(err).To(MatchError(context.Canceled))
	})

	It("rejects a response without choices", func() {
		response = `{"id":"chatcmpl-test","object":"chat.completion","created":1760000000,"model":"gpt-4o-mini","choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`

		_, err := newProvider().Review(context.Background(), "x := 1")

		Expect(err).To(MatchError(model.ErrMalformedReview))
	})
})
