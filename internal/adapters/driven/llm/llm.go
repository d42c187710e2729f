// Package llm holds the pieces shared by the summarisation provider adapters:
// prompt rendering, token budgets and HTTP status errors.
package llm

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/polidigest/internal/core/ports/driven"
)

// DefaultSummarisePrompt is the fallback prompt when no PromptStore is configured.
// Placeholders: min words, max words, content.
const DefaultSummarisePrompt = `Summarise the following insurance policy text in %d to %d words.
Keep policy numbers, names, dates and monetary amounts exactly as written.
Return only the summary.

Content:
%s

Summary:`

// Temperature is used for every summarisation request.
const Temperature = 0.3

// minTokens keeps tiny budgets from truncating a summary mid-sentence.
const minTokens = 64

// Prompt renders the summarise template for content.
// A non-empty instruction is placed ahead of the content.
func Prompt(store driven.PromptStore, content string, opts driven.SummariseOptions) string {
	template := DefaultSummarisePrompt
	if store != nil {
		if p, err := store.Load(driven.PromptSummarise); err == nil && strings.Count(p, "%") >= 3 {
			template = p
		}
	}

	if opts.Instruction != "" {
		content = strings.TrimSpace(opts.Instruction) + "\n\n" + content
	}
	return fmt.Sprintf(template, opts.MinLength, opts.MaxLength, content)
}

// MaxTokens estimates a completion budget for a word limit.
// English prose averages about 1.3 tokens per word; the margin covers that.
func MaxTokens(maxWords int) int {
	tokens := maxWords * 2
	if tokens < minTokens {
		return minTokens
	}
	return tokens
}

// StatusError is a non-2xx response from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Body       string
}

// NewStatusError builds a StatusError, reading Retry-After when present.
func NewStatusError(provider string, resp *http.Response, body []byte) *StatusError {
	e := &StatusError{
		Provider:   provider,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: API returned status %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s: API returned status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// RateLimited reports whether the provider rejected the request for quota.
func (e *StatusError) RateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}
