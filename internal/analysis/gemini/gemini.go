// Package gemini calls the Google Generative Language REST API to
// produce billing commentary.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"rentledger/internal/analysis"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"
)

// Client is a minimal generateContent client. It speaks the REST surface
// directly so the only dependency is net/http.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewFromEnv builds a client from GEMINI_API_KEY and optional
// GEMINI_MODEL.
func NewFromEnv() (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = defaultModel
	}
	return New(apiKey, model), nil
}

func New(apiKey, model string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

// generateContent request/response, reduced to the fields we use.
type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
)

// Analyze sends the period snapshot to the model and returns its markdown
// reply.
func (c *Client) Analyze(ctx context.Context, snap analysis.Snapshot) (string, error) {
	prompt, err := buildPrompt(snap)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call generative api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("generative api: %s (status %d)", parsed.Error.Message, resp.StatusCode)
		}
		return "", fmt.Errorf("generative api: status %d", resp.StatusCode)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("generative api: empty response")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt serializes the snapshot into the Vietnamese analysis
// request the landlord sees answers to.
func buildPrompt(snap analysis.Snapshot) (string, error) {
	rooms, err := json.Marshal(snap.Rooms)
	if err != nil {
		return "", err
	}
	readings, err := json.Marshal(snap.Readings)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Dưới đây là dữ liệu quản lý phòng trọ cho tháng %s:
Cấu hình phòng: %s
Chỉ số điện nước: %s
Đơn giá: điện %d/kWh, nước %d/m3, phí dịch vụ %d, phí khác %d.

Hãy phân tích và đưa ra:
1. Tổng quan doanh thu dự kiến.
2. Các phòng có mức tiêu thụ điện/nước bất thường (cao hơn trung bình).
3. Đề xuất thông báo nhắc nhở đóng tiền chuyên nghiệp bằng tiếng Việt cho chủ nhà gửi cho khách.
4. Gợi ý tối ưu chi phí vận hành.

Trả về phản hồi bằng Markdown dễ đọc, trình bày đẹp mắt.`,
		string(snap.Period), rooms, readings,
		snap.Rates.ElectricityRate.Amount,
		snap.Rates.WaterRate.Amount,
		snap.Rates.ServiceFee.Amount,
		snap.Rates.OtherFee.Amount), nil
}
