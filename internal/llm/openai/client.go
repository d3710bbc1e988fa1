package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/llm"
)

// ExtractFields implements llm.FieldExtractor over text-only chat/completions.
// Only masked text ever reaches this call; images and PDF bytes never do.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.BillFields, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"text_len", len(req.MaskedText),
		"vendor_hints", len(req.KnownVendorNames),
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt(req)},
			{"role": "user", "content": llm.BuildUserPrompt(req.MaskedText)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.BillFields{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return llm.BillFields{}, common.NewAppError("LLM_FORMAT",
			"Could not read the AI response. Try scanning again.",
			common.WrapError(common.ErrExtractionFormat, err.Error()))
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid, "raw", string(raw))
		return llm.BillFields{}, common.NewAppError("LLM_FORMAT",
			"Could not read the AI response. Try scanning again.",
			common.ErrExtractionFormat)
	}

	content := llm.StripFences(cc.Choices[0].Message.Content)
	fields, err := decodeFields(rid, content, c)
	if err != nil {
		return llm.BillFields{}, err
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"vendor_hint", fields.VendorName,
		"date", fields.Date,
		"amount", fields.Amount,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return fields, nil
}

func decodeFields(rid, content string, c *Client) (llm.BillFields, error) {
	formatErr := func(cause error) error {
		c.logger.Error("llm.extract.format_error", "req_id", rid, "error", cause, "content", content)
		return common.NewAppError("LLM_FORMAT",
			"Could not read the AI response. Try scanning again.",
			common.WrapError(common.ErrExtractionFormat, cause.Error()))
	}

	cleaned, dropped, err := llm.NormalizeResponseJSON([]byte(content))
	if err != nil {
		return llm.BillFields{}, formatErr(err)
	}
	if len(dropped) > 0 {
		c.logger.Warn("llm.extract.sanitized", "req_id", rid, "adjustments", dropped)
	}

	schema := llm.BuildBillFieldsJSONSchema()
	if err := llm.ValidateJSONAgainstSchema(schema, cleaned); err != nil {
		return llm.BillFields{}, formatErr(err)
	}

	var out llm.BillFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return llm.BillFields{}, formatErr(err)
	}
	llm.ApplyDefaults(&out)
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, common.NewAppError("LLM_HTTP",
			"Bill scanning failed. Please try again.",
			common.WrapError(common.ErrExtractionService, err.Error()))
	}
	defer func(rc io.ReadCloser) {
		if err := rc.Close(); err != nil {
			c.logger.Warn("llm response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, common.NewAppError("LLM_AUTH",
			"AI key rejected. Check your key or server setup.",
			common.ErrInvalidCredentials)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, common.NewAppError("LLM_RATE",
			"AI service is busy. Wait a moment and retry.",
			common.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		msg := upstreamMessage(buf.Bytes())
		if msg == "" {
			msg = "Bill scanning failed. Please try again."
		}
		return nil, common.NewAppError("LLM_STATUS",
			msg,
			common.WrapError(common.ErrExtractionService, fmt.Sprintf("status %d", resp.StatusCode)))
	}
	return buf.Bytes(), nil
}

// upstreamMessage digs the provider error message out of the envelope, if any.
func upstreamMessage(raw []byte) string {
	var env struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return strings.TrimSpace(env.Error.Message)
}
