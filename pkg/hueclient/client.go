package hueclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// requestTimeout bounds a single HTTP attempt; the spec leaves this to the
// implementer, suggesting 10s.
const requestTimeout = 10 * time.Second

// Client is the concrete LightingClient: get_grouped_light, turn_on,
// turn_off, update_brightness, and recall_scene over the lighting API.
type Client struct {
	baseURL string
	appKey  string
	http    *retryablehttp.Client
}

// New builds a Client pointed at https://host/clip/v2/resource/, attaching
// appKey as the hue-application-key header on every request. Self-signed
// certificates are accepted.
func New(host, appKey string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil
	retryClient.HTTPClient.Timeout = requestTimeout
	retryClient.HTTPClient.Transport = &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // hub-local self-signed certs are expected
	}
	// DefaultRetryPolicy retries connection errors, 429, and 5xx other than
	// 501; any other 4xx is a bad request, not transient, and is not retried.
	retryClient.CheckRetry = retryablehttp.DefaultRetryPolicy

	return &Client{
		baseURL: fmt.Sprintf("https://%s/clip/v2/resource/", host),
		appKey:  appKey,
		http:    retryClient,
	}
}

// GetGroupedLight fetches the current state of a grouped light.
func (c *Client) GetGroupedLight(ctx context.Context, uuid string) (GroupedLight, error) {
	resp, err := c.do(ctx, http.MethodGet, "grouped_light/"+uuid, nil)
	if err != nil {
		return GroupedLight{}, err
	}
	defer resp.Body.Close()

	var parsed getGroupedLightResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return GroupedLight{}, fmt.Errorf("hueclient: decoding get_grouped_light response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return GroupedLight{}, fmt.Errorf("hueclient: get_grouped_light %s: empty data array", uuid)
	}
	return GroupedLight{On: parsed.Data[0].On.On, Brightness: parsed.Data[0].Dimming.Brightness}, nil
}

// TurnOn sets a grouped light on, returning the API-reported state.
func (c *Client) TurnOn(ctx context.Context, uuid string) (GroupedLight, error) {
	body := putGroupedLightBody{On: &onBody{On: true}}
	if err := c.put(ctx, "grouped_light/"+uuid, body); err != nil {
		return GroupedLight{}, err
	}
	return c.GetGroupedLight(ctx, uuid)
}

// TurnOff sets a grouped light off.
func (c *Client) TurnOff(ctx context.Context, uuid string) error {
	body := putGroupedLightBody{On: &onBody{On: false}}
	return c.put(ctx, "grouped_light/"+uuid, body)
}

// UpdateBrightness sets a grouped light on at the given brightness.
func (c *Client) UpdateBrightness(ctx context.Context, uuid string, brightness float64) error {
	body := putGroupedLightBody{
		On:      &onBody{On: true},
		Dimming: &dimmingBody{Brightness: brightness},
	}
	return c.put(ctx, "grouped_light/"+uuid, body)
}

// RecallScene activates a scene, optionally pinning its brightness.
func (c *Client) RecallScene(ctx context.Context, sceneUUID string, brightness *float64) error {
	body := putSceneBody{Recall: recallBody{Action: "static"}}
	if brightness != nil {
		body.Recall.Dimming = &dimmingBody{Brightness: *brightness}
	}
	return c.put(ctx, "scene/"+sceneUUID, body)
}

func (c *Client) put(ctx context.Context, path string, body any) error {
	resp, err := c.do(ctx, http.MethodPut, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("hueclient: encoding %s body: %w", method, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("hueclient: building %s request: %w", method, err)
	}
	req.Header.Set("hue-application-key", c.appKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hueclient: %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &HTTPError{Verb: method + " " + path, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return resp, nil
}

// SetLogger attaches an slog.Logger that records each HTTP attempt, mirroring
// the pack's retryablehttp logging convention without pulling in zerolog.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.http.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		logger.Debug("hueclient request", "method", req.Method, "url", req.URL.String(), "attempt", attempt)
	}
}
