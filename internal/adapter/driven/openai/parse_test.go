package openai

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ericfisherdev/aireviewer/internal/domain/model"
)

var _ = Describe("parseReview", func() {
	It("decodes a well-formed review", func() {
		content := `{
			"summary": "Looks fine",
			"issues": [
				{"severity": "critical", "title": "Injection", "description": "Escape input."},
				{"severity": "warning", "title": "Unused", "description": "Remove it."}
			],
			"refactoredCode": "const x = 1;"
		}`

		got, err := parseReview(content)

		Expect(err).NotTo(HaveOccurred())
		Expect(got.Summary).To(Equal("Looks fine"))
		Expect(got.Issues).To(Equal([]model.Issue{
			{Severity: model.SeverityCritical, Title: "Injection", Description: "Escape input."},
			{Severity: model.SeverityWarning, Title: "Unused", Description: "Remove it."},
		}))
		Expect(got.RefactoredCode).To(Equal("const x = 1;"))
	})

	It("treats missing issues and refactor as empty", func() {
		got, err := parseReview(`{"summary": "Looks fine"}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(got.Issues).To(BeEmpty())
		Expect(got.Issues).NotTo(BeNil())
		Expect(got.HasRefactor()).To(BeFalse())
	})

	It("maps unknown severities to info", func() {
		got, err := parseReview(`{"summary": "s", "issues": [{"severity": "blocker", "title": "t", "description": "d"}]}`)

		Expect(err).NotTo(HaveOccurred())
		Expect(got.Issues[0].Severity).To(Equal(model.SeverityInfo))
	})

	It("strips a surrounding markdown fence", func() {
		got, err := parseReview("```json\n{\"summary\": \"fenced\", \"issues\": []}\n```")

		Expect(err).NotTo(HaveOccurred())
		Expect(got.Summary).To(Equal("fenced"))
	})

	DescribeTable("rejects malformed content",
		func(content string) {
			_, err := parseReview(content)
			Expect(err).To(MatchError(model.ErrMalformedReview))
		},
		Entry("empty", ""),
		Entry("plain text", "This code looks great!"),
		Entry("missing summary", `{"issues": []}`),
		Entry("summary wrong type", `{"summary": 42}`),
		Entry("issues wrong type", `{"summary": "s", "issues": "none"}`),
		Entry("issue without title", `{"summary": "s", "issues": [{"severity": "info", "description": "d"}]}`),
		Entry("issue blank title", `{"summary": "s", "issues": [{"severity": "info", "title": " "}]}`),
		Entry("array instead of object", `[{"summary": "s"}]`),
	)
})

var _ = Describe("generateSchema", func() {
	It("requires every field and forbids extras", func() {
		raw, err := json.Marshal(generateSchema())
		Expect(err).NotTo(HaveOccurred())

		var schema map[string]any
		Expect(json.Unmarshal(raw, &schema)).To(Succeed())

		Expect(schema["required"]).To(ConsistOf("summary", "issues", "refactoredCode"))
		Expect(schema["additionalProperties"]).To(BeFalse())

		props := schema["properties"].(map[string]any)
		items := props["issues"].(map[string]any)["items"].(map[string]any)
		severity := items["properties"].(map[string]any)["severity"].(map[string]any)
		Expect(severity["enum"]).To(ConsistOf("info", "warning", "critical"))
	})
})

var _ = Describe("buildUserPrompt", func() {
	It("wraps the code in markers", func() {
		prompt := buildUserPrompt("x := 1")

		Expect(prompt).To(ContainSubstring("--- BEGIN CODE ---\nx := 1\n--- END CODE ---"))
	})
})
