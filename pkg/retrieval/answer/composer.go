// Package answer turns a ranked result list into a grounded natural-language
// response via the configured chat provider.
package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doc-intelligence-be/internal/pkg/apperror"
	"doc-intelligence-be/internal/pkg/logger"
	"doc-intelligence-be/pkg/llm"
	"doc-intelligence-be/pkg/retrieval"
)

// NoContentMessage is returned without contacting the chat provider when no
// documents matched the query.
const NoContentMessage = "I couldn't find any relevant documents or notes to answer your question. Please make sure you have uploaded documents with OCR processing completed or created some notes."

const (
	// Only the strongest matches go into the prompt; more context
	// dilutes the answer and burns tokens.
	maxContextDocuments = 3
	maxExcerptChars     = 1000

	answerTemperature = 0.1
	answerMaxTokens   = 1000
)

const systemInstruction = "You are a helpful assistant that answers questions based on provided documents and notes. Always be accurate and cite your sources."

// Composer builds a grounded prompt from retrieval results and asks the chat
// provider for an answer. A provider failure is surfaced as a composition
// error; no fallback text is ever substituted for a failed generation.
type Composer struct {
	provider llm.LLMProvider
	timeout  time.Duration
	logger   logger.ILogger
}

func NewComposer(provider llm.LLMProvider, timeout time.Duration, log logger.ILogger) *Composer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Composer{provider: provider, timeout: timeout, logger: log}
}

// Compose answers query using the top-ranked documents as the only permitted
// knowledge source.
func (c *Composer) Compose(ctx context.Context, query string, results []*retrieval.ScoredDocument) (string, error) {
	if len(results) == 0 {
		return NoContentMessage, nil
	}

	prompt := buildPrompt(query, results)

	chatCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	response, err := c.provider.Chat(chatCtx, []llm.Message{
		{Role: "system", Content: systemInstruction},
		{Role: "user", Content: prompt},
	}, llm.WithTemperature(answerTemperature), llm.WithMaxTokens(answerMaxTokens))
	if err != nil {
		c.logger.Error("answer", "chat provider failed", map[string]interface{}{
			"query": query,
			"error": err.Error(),
		})
		return "", apperror.Composition(err)
	}

	return strings.TrimSpace(response), nil
}

func buildPrompt(query string, results []*retrieval.ScoredDocument) string {
	contextDocs := results
	if len(contextDocs) > maxContextDocuments {
		contextDocs = contextDocs[:maxContextDocuments]
	}

	contextParts := make([]string, 0, len(contextDocs))
	for i, sd := range contextDocs {
		content, err := retrieval.ContentText(sd.Document)
		if err != nil {
			content = ""
		}
		content = retrieval.TruncateChars(content, maxExcerptChars)
		label := kindLabel(string(sd.Document.Kind))
		contextParts = append(contextParts, fmt.Sprintf("%s %d (%s):\n%s", label, i+1, sd.Document.DisplayTitle(), content))
	}

	var b strings.Builder
	b.WriteString("You are a professional yet approachable AI assistant that helps the user find information\n")
	b.WriteString("from their uploaded documents, meeting notes, and related files.\n\n")
	b.WriteString("## Your role:\n")
	b.WriteString("- Respond in a natural, human-like way while keeping answers clear, concise, and professional.\n")
	b.WriteString("- Base all responses only on the information in the CONTENT section.\n")
	b.WriteString("- If the answer is incomplete because the documents don't cover it, gently tell the users about it\n")
	b.WriteString("  (e.g., \"The documents don't define X directly, but they do mention...\").\n")
	b.WriteString("- If multiple documents contribute, reference them conversationally (e.g., \"Both the project plan and meeting summary mention...\").\n")
	b.WriteString("- Organize complex answers with short paragraphs or bullet points for readability.\n")
	b.WriteString("**Citations**: When you provide an answer, reference the specific document(s) or note(s) you are using. Use a format like: *(Source: Document Name)*.\n\n")
	b.WriteString("## CONTENT:\n")
	b.WriteString(strings.Join(contextParts, "\n\n"))
	b.WriteString("\n\n## USER QUESTION:\n")
	b.WriteString(query)
	b.WriteString("\n\n## Task:\n")
	b.WriteString("Answer the question in a natural, conversational, and helpful tone that feels like a knowledgeable colleague explaining the answer.\n")
	b.WriteString("Where possible, weave source mentions naturally into the sentences instead of listing them mechanically at the end.\n")
	return b.String()
}

// kindLabel renders the document kind as a heading word ("Pdf", "Note").
func kindLabel(kind string) string {
	if kind == "" {
		return "Document"
	}
	return strings.ToUpper(kind[:1]) + strings.ToLower(kind[1:])
}
