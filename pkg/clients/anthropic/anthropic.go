package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	model          = "claude-3-haiku-20240307"
	maxTokens      = 128
)

// NoCommand is what the model answers when the text is not a farm operation.
const NoCommand = "NONE"

// ErrEmptyResponse is returned when the API answers without any text block.
var ErrEmptyResponse = errors.New("empty response from ai")

// Client turns free text written by farm workers into chat commands.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
}

// NewClient creates a configured Anthropic client. An empty baseURL targets
// the public API.
func NewClient(apiKey, baseURL string) Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	return &anthropicClient{httpClient: client}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You translate messages from workers of a small farm in Mozambique into exactly one chat command.
Messages may be in Portuguese or English. Answer with the command only, no explanation.

Commands:
/eggs <pen> <qty>            eggs collected today in a pen
/birth <pen> <qty>           animals born
/purchase <pen> <qty>        animals bought
/sale <pen> <qty>            animals sold
/death <pen> <qty>           animals that died
/feed add <type> <kg>        feed delivered
/feed use <type> [kg]        feed given to animals (omit kg for the usual daily amount)
/veg <type> <kg> <price>     vegetables harvested and price per kg
/stock                       feed stock question
/summary                     today's summary

<pen> may be the pen name or the animal type (Porcos, Galinhas, Patos, Codornezes).
If the message is not one of these operations answer ` + NoCommand + `.`

// TranslateToCommand asks the model for the command matching input. It
// returns an empty string when the text is not a farm operation.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []Message{{Role: "user", Content: input}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	for _, block := range respBody.Content {
		if block.Type != "" && block.Type != "text" {
			continue
		}
		return normalizeCommand(block.Text), nil
	}
	return "", ErrEmptyResponse
}

// normalizeCommand keeps the first line that looks like a command.
func normalizeCommand(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`")
		if line == "" {
			continue
		}
		if strings.EqualFold(line, NoCommand) || !strings.HasPrefix(line, "/") {
			return ""
		}
		return line
	}
	return ""
}
