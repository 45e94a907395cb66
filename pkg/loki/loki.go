package loki

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"github.com/go-playground/validator/v10"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type ErrorHandler func(err error)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {

	// Url of the push endpoint, e.g. http://localhost:3100/loki/api/v1/push
	Url string `validate:"required,url"`

	// Username and Password enable basic auth when both are set.
	Username string
	Password string

	// TenantID is sent as X-Scope-OrgID when set.
	TenantID string

	// BatchMaxSize is the number of lines that triggers a push.
	BatchMaxSize int `validate:"gte=1"`

	// BatchMaxWait is the longest a line waits before being pushed.
	BatchMaxWait time.Duration `validate:"gt=0"`

	// Labels are added to every stream.
	Labels map[string]string
}

func (cfg *Config) setDefaults() {
	if cfg.BatchMaxSize == 0 {
		cfg.BatchMaxSize = 500
	}
	if cfg.BatchMaxWait == 0 {
		cfg.BatchMaxWait = 5 * time.Second
	}
}

// Entry is one log line. Entries with equal labels end up in the same stream.
type Entry struct {
	Time   time.Time
	Labels map[string]string
	Line   string
}

type pushRequest struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

// Pusher batches entries in the background and ships them to Loki.
type Pusher struct {
	config  Config
	client  HTTPClient
	onError ErrorHandler
	entries chan Entry
	quit    chan struct{}
	done    sync.WaitGroup
	once    sync.Once
	batch   []Entry
}

func New(cfg Config, client HTTPClient, onError ErrorHandler) (*Pusher, error) {

	cfg.setDefaults()
	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if onError == nil {
		onError = func(error) {}
	}

	p := &Pusher{
		config:  cfg,
		client:  client,
		onError: onError,
		entries: make(chan Entry, cfg.BatchMaxSize),
		quit:    make(chan struct{}),
		batch:   make([]Entry, 0, cfg.BatchMaxSize),
	}

	p.done.Add(1)
	go p.run()
	return p, nil
}

// Push queues an entry. It returns false once the pusher is stopped.
func (p *Pusher) Push(e Entry) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.entries <- e:
		return true
	case <-p.quit:
		return false
	}
}

// Stop flushes queued entries and waits for the last push to finish.
func (p *Pusher) Stop() {
	p.once.Do(func() {
		close(p.quit)
		p.done.Wait()
	})
}

func (p *Pusher) run() {
	defer p.done.Done()

	ticker := time.NewTicker(p.config.BatchMaxWait)
	defer ticker.Stop()

	for {
		select {
		case e := <-p.entries:
			p.batch = append(p.batch, e)
			if len(p.batch) >= p.config.BatchMaxSize {
				p.flush()
			}
		case <-ticker.C:
			p.flush()
		case <-p.quit:
			for {
				select {
				case e := <-p.entries:
					p.batch = append(p.batch, e)
				default:
					p.flush()
					return
				}
			}
		}
	}
}

func (p *Pusher) flush() {
	if len(p.batch) == 0 {
		return
	}
	if err := p.send(p.batch); err != nil {
		p.onError(err)
	}
	p.batch = p.batch[:0]
}

func (p *Pusher) streams(entries []Entry) []stream {
	var streams []stream
	index := map[string]int{}

	for _, e := range entries {
		labels := make(map[string]string, len(p.config.Labels)+len(e.Labels))
		for k, v := range p.config.Labels {
			labels[k] = v
		}
		for k, v := range e.Labels {
			if v != "" {
				labels[k] = v
			}
		}

		key := labelKey(labels)
		i, ok := index[key]
		if !ok {
			i = len(streams)
			index[key] = i
			streams = append(streams, stream{Stream: labels})
		}
		streams[i].Values = append(streams[i].Values, [2]string{strconv.FormatInt(e.Time.UnixNano(), 10), e.Line})
	}
	return streams
}

func labelKey(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
		sb.WriteByte(',')
	}
	return sb.String()
}

func (p *Pusher) send(entries []Entry) error {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)

	if err := json.NewEncoder(gz).Encode(pushRequest{Streams: p.streams(entries)}); err != nil {
		return fmt.Errorf("error encoding push request: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("error compressing push request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.Url, &buf)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Content-Encoding", "gzip")

	if p.config.TenantID != "" {
		req.Header.Set("X-Scope-OrgID", p.config.TenantID)
	}
	if p.config.Username != "" && p.config.Password != "" {
		req.SetBasicAuth(p.config.Username, p.config.Password)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status from loki: %s, body: %s", resp.Status, string(body))
	}
	return nil
}
