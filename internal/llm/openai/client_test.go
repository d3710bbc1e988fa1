package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/billerpro/billerpro/internal/common"
	"github.com/billerpro/billerpro/internal/llm"
)

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	c := NewClient(Config{APIKey: "test-key", BaseURL: ts.URL, Model: "test-model"}, nil)
	return c, ts
}

func TestExtractFieldsSuccess(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(chatResponse(`{"customer_name":"Ravi","amount":"5000","date":"2024-01-12","bill_number":"INV-099","vendor_name":"Acme Co","confidence":{"customer":"high","amount":"high","date":"medium"}}`)))
	})

	fields, err := c.ExtractFields(context.Background(), llm.ExtractRequest{
		MaskedText:       "Invoice No: INV-099 Net Amount: 5000",
		KnownVendorNames: []string{"Acme Co"},
	})
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if fields.Amount != "5000" || fields.Date != "2024-01-12" || fields.VendorName != "Acme Co" {
		t.Errorf("fields = %+v", fields)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Errorf("model = %v", gotBody["model"])
	}
}

func TestExtractFieldsStripsFences(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse("```json\n{\"amount\":\"100\"}\n```")))
	})
	fields, err := c.ExtractFields(context.Background(), llm.ExtractRequest{MaskedText: "x"})
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if fields.Amount != "100" {
		t.Errorf("amount = %q", fields.Amount)
	}
}

func TestExtractFieldsLenientDefaults(t *testing.T) {
	// Missing fields and model noise degrade to empty values, never an error.
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatResponse(`{"amount":"₹5,000","date":"12/01/2024","gst_number":"x"}`)))
	})
	fields, err := c.ExtractFields(context.Background(), llm.ExtractRequest{MaskedText: "x"})
	if err != nil {
		t.Fatalf("ExtractFields: %v", err)
	}
	if fields.Amount != "5000" {
		t.Errorf("amount = %q, want currency noise stripped", fields.Amount)
	}
	if fields.Date != "" {
		t.Errorf("date = %q, want dropped non-ISO date", fields.Date)
	}
	if fields.Confidence.Amount != "low" {
		t.Errorf("confidence = %+v, want low default", fields.Confidence)
	}
}

func TestExtractFieldsStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, common.ErrInvalidCredentials},
		{"rate limited", http.StatusTooManyRequests, `{}`, common.ErrRateLimited},
		{"server error", http.StatusInternalServerError, `{"error":{"message":"model overloaded"}}`, common.ErrExtractionService},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.ExtractFields(context.Background(), llm.ExtractRequest{MaskedText: "x"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestExtractFieldsUpstreamMessageSurfaced(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"context length exceeded"}}`))
	})
	_, err := c.ExtractFields(context.Background(), llm.ExtractRequest{MaskedText: "x"})
	if err == nil {
		t.Fatal("ExtractFields succeeded, want error")
	}
	if got := common.UserMessage(err); got != "context length exceeded" {
		t.Errorf("user message = %q, want upstream message", got)
	}
}

func TestExtractFieldsMalformedContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"content not json", chatResponse("the total is five thousand")},
		{"no choices", `{"choices":[]}`},
		{"envelope not json", `<html>gateway error</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.ExtractFields(context.Background(), llm.ExtractRequest{MaskedText: "x"})
			if !errors.Is(err, common.ErrExtractionFormat) {
				t.Errorf("error = %v, want ErrExtractionFormat", err)
			}
		})
	}
}
