package boss

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"io"
	"net/http"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://www.zhipin.com/wapi/zpgeek/search/joblist.json"

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrDecode           = errors.New("error decoding JSON response")
	ErrRejected         = errors.New("request rejected by upstream")
)

type jobListResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	ZpData  struct {
		HasMore bool         `json:"hasMore"`
		JobList []JobPreview `json:"jobList"`
	} `json:"zpData"`
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	baseURL     string
	headers     http.Header
	now         func() time.Time
}

func NewClient(timeout time.Duration) *Client {
	headers := http.Header{}
	headers.Set("Accept", "application/json, text/plain, */*")
	headers.Set("Accept-Language", "zh-CN,zh;q=0.9")
	headers.Set("Referer", "https://www.zhipin.com/web/geek/jobs")

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
		headers:    headers,
		now:        time.Now,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

// SetRateLimit caps outgoing requests. Zero disables the cap.
func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	if maxRequestsPerSecond <= 0 {
		c.rateLimiter = nil
		return
	}
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetHeader sets a header sent with every request, e.g. Cookie or Referer.
// An empty value removes the header.
func (c *Client) SetHeader(key, value string) {
	if value == "" {
		c.headers.Del(key)
		return
	}
	c.headers.Set(key, value)
}

// GetJobList requests one page of search results. An empty list is returned as is,
// deciding whether it means throttling is up to the caller.
func (c *Client) GetJobList(ctx context.Context, parameters SearchParameters, userAgent string) ([]JobPreview, error) {

	if err := parameters.Validate(); err != nil {
		return nil, err
	}

	params := parameters.ToUrlParams()
	params.Add("_", strconv.FormatInt(c.now().UnixMilli(), 10))

	body, err := c.sendRequest(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), userAgent)
	if err != nil {
		return nil, err
	}

	var response jobListResponse
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(&response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if response.Code != 0 {
		return nil, errors.Wrapf(ErrRejected, "code %d, message %q", response.Code, response.Message)
	}

	return response.ZpData.JobList, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, url string, userAgent string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	for key, values := range c.headers {
		req.Header[key] = values
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Wrapf(ErrUnexpectedStatus, "status %v, body: %v", resp.StatusCode, truncate(string(body), 256))
	}

	return body, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
