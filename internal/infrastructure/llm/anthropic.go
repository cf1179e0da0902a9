// Package llm adapts the Anthropic API to the extraction oracle port.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/emilyparentdata/StagingTools/internal/domain"
	"github.com/emilyparentdata/StagingTools/internal/ports"
)

// Client calls the Anthropic Messages API.
type Client struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *slog.Logger
}

var _ ports.Oracle = (*Client)(nil)

// NewClient builds an API client for the given model.
func NewClient(apiKey, model string, maxTokens int, logger *slog.Logger) *Client {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:    &client,
		model:     anthropic.Model(model),
		maxTokens: int64(maxTokens),
		logger:    logger,
	}
}

// Complete sends one prompt and returns the text of the first content
// block. Calls block until the API answers; cancellation and timeouts are
// the caller's context to manage.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Content) == 0 {
		return "", &domain.ExtractionUnavailableError{
			Retryable: true,
			Err:       fmt.Errorf("empty response from model"),
		}
	}
	if c.logger != nil {
		c.logger.Debug("model call complete",
			"model", string(c.model),
			"inputTokens", resp.Usage.InputTokens,
			"outputTokens", resp.Usage.OutputTokens)
	}
	return resp.Content[0].Text, nil
}

// classifyError separates exhausted quota, which retrying cannot fix, from
// transient overload and transport failures, which a later retry may.
func classifyError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Error())
		if strings.Contains(msg, "credit balance") || strings.Contains(msg, "quota") {
			return &domain.ExtractionUnavailableError{Retryable: false, Err: err}
		}
		switch apiErr.StatusCode {
		case 429, 500, 503, 529:
			return &domain.ExtractionUnavailableError{Retryable: true, Err: err}
		case 401, 403:
			return &domain.ExtractionUnavailableError{Retryable: false, Err: err}
		}
	}
	return &domain.ExtractionUnavailableError{Retryable: true, Err: err}
}
