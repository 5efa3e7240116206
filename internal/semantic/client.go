package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pubscan/pubscan/internal/config"
	"github.com/pubscan/pubscan/internal/model"
)

// systemPrompt instructs the external model. The vocabulary list must
// stay aligned with the known violation kinds; the adapter tolerates
// off-vocabulary answers but scoring treats them all the same, so the
// prompt keeps the model on the known set.
const systemPrompt = `You are a website compliance reviewer for publisher ad-network policies.
Analyze the provided page and report ONLY violations you are 100% sure about.
Use exactly these violation types: Copyright, IllicitDownloads, AffiliateDisclosure, ExcessiveAds, AdultContent, Gambling, Scam.
Respond with a single JSON object, no prose, in this shape:
{"violations":[{"type":"...","excerpt":"...","confidence":0.0}],"summary":"one line","suggestions":["..."]}
An empty violations array means the page is compliant. Confidence is your certainty in [0,1].`

// Result is the classifier's contribution to one page's finding. The
// zero value is the universal "nothing found" answer that every failure
// mode collapses to.
type Result struct {
	// Violations are confidence-filtered policy violations.
	Violations []model.Violation

	// Summary is the model's one-line page assessment.
	Summary string

	// Suggestions are remediation hints for the page.
	Suggestions []string
}

// Classifier calls an OpenAI-compatible chat-completions endpoint to
// classify pages. One Classifier is constructed per process from the
// immutable startup configuration and shared read-only by all scans.
//
// Design decision: A raw net/http client instead of a vendor SDK. The
// adapter speaks to any OpenAI-compatible endpoint (hosted or local),
// needs exactly one route, and the hard part is tolerating malformed
// output, which no SDK does for us.
type Classifier struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewClassifier creates a Classifier from the startup configuration.
// An empty API key yields a disabled classifier whose Classify always
// returns the empty result.
func NewClassifier(cfg *config.Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := strings.TrimSuffix(cfg.ClassifierEndpoint, "/")
	if endpoint == "" {
		endpoint = "https://api.openai.com"
	}
	return &Classifier{
		endpoint: endpoint,
		model:    cfg.ClassifierModel,
		apiKey:   cfg.ClassifierAPIKey,
		client:   &http.Client{Timeout: cfg.ClassifierTimeout},
		logger:   logger,
	}
}

// Configured reports whether the classifier has a credential and will
// actually make external calls.
func (c *Classifier) Configured() bool {
	return c.apiKey != ""
}

// Classify sends one page context to the external service. Any failure
// (disabled classifier, pre-filter skip, transport error, bad auth,
// malformed output) returns the empty Result; the caller never sees an
// error from this method.
func (c *Classifier) Classify(ctx context.Context, pc PageContext) Result {
	if !c.Configured() {
		return Result{}
	}
	if !ShouldClassify(pc) {
		c.logger.Debug("semantic classification skipped by pre-filter", slog.String("url", pc.URL))
		return Result{}
	}

	content, err := c.complete(ctx, pc)
	if err != nil {
		c.logger.Warn("semantic classification failed",
			slog.String("url", pc.URL),
			slog.String("error", err.Error()))
		return Result{}
	}
	return parseResult(content)
}

// chatRequest and chatResponse are the minimal slices of the
// chat-completions wire format this adapter touches.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completions round trip and returns the raw
// assistant message content.
func (c *Classifier) complete(ctx context.Context, pc PageContext) (string, error) {
	userPrompt := fmt.Sprintf("URL: %s\nPage role: %s\n\n%s", pc.URL, pc.Role, pc.Text())

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// resultPayload is the loose schema expected inside the model's answer.
// Every field is optional; anything missing decodes to its zero value.
type resultPayload struct {
	Violations []struct {
		Type       string  `json:"type"`
		Excerpt    string  `json:"excerpt"`
		Confidence float64 `json:"confidence"`
	} `json:"violations"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// parseResult turns raw model output into a Result. Output is routinely
// wrapped in code fences or prose, so the parser strips fences, falls
// back to the first JSON-object-shaped substring, and treats anything
// still unparseable as an empty result. Violations under the confidence
// floor are dropped here, at the boundary.
func parseResult(content string) Result {
	cleaned := stripCodeFences(content)
	if !json.Valid([]byte(cleaned)) {
		cleaned = firstJSONObject(cleaned)
		if cleaned == "" {
			return Result{}
		}
	}

	var payload resultPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return Result{}
	}

	result := Result{
		Summary:     strings.TrimSpace(payload.Summary),
		Suggestions: payload.Suggestions,
	}
	for _, v := range payload.Violations {
		if v.Confidence < model.MinConfidence {
			continue
		}
		result.Violations = append(result.Violations, model.NewViolation(model.ViolationKind(v.Type), v.Excerpt, v.Confidence))
	}
	return result
}

// stripCodeFences removes surrounding Markdown code-fence markers,
// including a language tag on the opening fence.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop a language tag like "json" on the opening fence line.
		if !strings.ContainsAny(s[:idx], "{}") {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// firstJSONObject extracts the first balanced-brace substring of s, or
// empty when none exists. Brace counting ignores braces inside strings.
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
