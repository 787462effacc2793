package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hwmonitor/internal/models"
)

// TelemetryBackend is the read side of the backend command interface
type TelemetryBackend interface {
	CPUUsage(ctx context.Context) (float64, error)
	MemoryUsage(ctx context.Context) (float64, error)
	GPUUsage(ctx context.Context) (float64, error)
	UsageHistory(ctx context.Context, target models.HardwareType, seconds int) ([]float64, error)
	CPUTemperature(ctx context.Context) ([]models.NameValue, error)
	GPUTemperature(ctx context.Context) ([]models.NameValue, error)
	CPUFan(ctx context.Context) ([]models.NameValue, error)
	GPUFan(ctx context.Context) ([]models.NameValue, error)
	HardwareInfo(ctx context.Context) (*models.HardwareInfo, error)
	ProcessList(ctx context.Context) ([]models.ProcessInfo, error)
}

// SettingsBackend persists settings. Every setter stores one field.
type SettingsBackend interface {
	Settings(ctx context.Context) (models.Settings, error)
	SetLanguage(ctx context.Context, lang string) error
	SetTheme(ctx context.Context, theme models.Theme) error
	SetDisplayTargets(ctx context.Context, targets []models.HardwareType) error
	SetGraphSize(ctx context.Context, size models.GraphSize) error
	SetLineGraphBorder(ctx context.Context, v bool) error
	SetLineGraphFill(ctx context.Context, v bool) error
	SetLineGraphMix(ctx context.Context, v bool) error
	SetLineGraphShowLegend(ctx context.Context, v bool) error
	SetLineGraphShowScale(ctx context.Context, v bool) error
	// SetLineGraphColor returns the colour as the backend stored it
	SetLineGraphColor(ctx context.Context, target models.HardwareType, color string) (string, error)
	SetState(ctx context.Context, key models.StateKey, value string) error
}

// Backend is the full command interface
type Backend interface {
	TelemetryBackend
	SettingsBackend
}

// APIError is a non-2xx answer from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client talks to the backend over HTTP
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for baseURL. token may be empty when the backend
// does not require auth.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns the bearer token sent with every request
func (c *Client) Token() string {
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(data))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) usage(ctx context.Context, target models.HardwareType) (float64, error) {
	var v models.UsageValue
	err := c.do(ctx, http.MethodGet, "/hardware/usage/"+string(target), nil, &v)
	return v.Value, err
}

func (c *Client) named(ctx context.Context, path string) ([]models.NameValue, error) {
	var out []models.NameValue
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) CPUUsage(ctx context.Context) (float64, error) {
	return c.usage(ctx, models.HardwareCPU)
}

func (c *Client) MemoryUsage(ctx context.Context) (float64, error) {
	return c.usage(ctx, models.HardwareMemory)
}

func (c *Client) GPUUsage(ctx context.Context) (float64, error) {
	return c.usage(ctx, models.HardwareGPU)
}

// UsageHistory returns up to seconds of samples, oldest first
func (c *Client) UsageHistory(ctx context.Context, target models.HardwareType, seconds int) ([]float64, error) {
	q := url.Values{"seconds": {strconv.Itoa(seconds)}}
	var h models.UsageHistory
	err := c.do(ctx, http.MethodGet, "/hardware/history/"+string(target)+"?"+q.Encode(), nil, &h)
	return h.Values, err
}

func (c *Client) CPUTemperature(ctx context.Context) ([]models.NameValue, error) {
	return c.named(ctx, "/hardware/temperature/cpu")
}

func (c *Client) GPUTemperature(ctx context.Context) ([]models.NameValue, error) {
	return c.named(ctx, "/hardware/temperature/gpu")
}

func (c *Client) CPUFan(ctx context.Context) ([]models.NameValue, error) {
	return c.named(ctx, "/hardware/fan/cpu")
}

// GPUFan returns the NVIDIA cooler speeds
func (c *Client) GPUFan(ctx context.Context) ([]models.NameValue, error) {
	return c.named(ctx, "/hardware/fan/gpu")
}

func (c *Client) HardwareInfo(ctx context.Context) (*models.HardwareInfo, error) {
	var info models.HardwareInfo
	if err := c.do(ctx, http.MethodGet, "/hardware/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) ProcessList(ctx context.Context) ([]models.ProcessInfo, error) {
	var out []models.ProcessInfo
	err := c.do(ctx, http.MethodGet, "/hardware/processes", nil, &out)
	return out, err
}

func (c *Client) Settings(ctx context.Context) (models.Settings, error) {
	var s models.Settings
	err := c.do(ctx, http.MethodGet, "/settings", nil, &s)
	return s, err
}

func (c *Client) put(ctx context.Context, field string, value interface{}) error {
	return c.do(ctx, http.MethodPut, "/settings/"+field, map[string]interface{}{"value": value}, nil)
}

func (c *Client) SetLanguage(ctx context.Context, lang string) error {
	return c.put(ctx, "language", lang)
}

func (c *Client) SetTheme(ctx context.Context, theme models.Theme) error {
	return c.put(ctx, "theme", theme)
}

func (c *Client) SetDisplayTargets(ctx context.Context, targets []models.HardwareType) error {
	if targets == nil {
		targets = []models.HardwareType{}
	}
	return c.put(ctx, "display_targets", targets)
}

func (c *Client) SetGraphSize(ctx context.Context, size models.GraphSize) error {
	return c.put(ctx, "graph_size", size)
}

func (c *Client) SetLineGraphBorder(ctx context.Context, v bool) error {
	return c.put(ctx, "line_graph_border", v)
}

func (c *Client) SetLineGraphFill(ctx context.Context, v bool) error {
	return c.put(ctx, "line_graph_fill", v)
}

func (c *Client) SetLineGraphMix(ctx context.Context, v bool) error {
	return c.put(ctx, "line_graph_mix", v)
}

func (c *Client) SetLineGraphShowLegend(ctx context.Context, v bool) error {
	return c.put(ctx, "line_graph_show_legend", v)
}

func (c *Client) SetLineGraphShowScale(ctx context.Context, v bool) error {
	return c.put(ctx, "line_graph_show_scale", v)
}

func (c *Client) SetLineGraphColor(ctx context.Context, target models.HardwareType, color string) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	body := map[string]string{"target": string(target), "value": color}
	if err := c.do(ctx, http.MethodPut, "/settings/line_graph_color", body, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

func (c *Client) SetState(ctx context.Context, key models.StateKey, value string) error {
	body := map[string]string{"key": string(key), "value": value}
	return c.do(ctx, http.MethodPut, "/settings/state", body, nil)
}

// OpenSettings asks the backend to broadcast open_settings
func (c *Client) OpenSettings(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/events/open_settings", nil, nil)
}
