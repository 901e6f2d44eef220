package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// maxIndexerBody bounds how much of an indexer response is read.
const maxIndexerBody = 1 << 20

type IndexerConfig struct {
	BaseURL string
	Timeout time.Duration

	// Circuit breaker settings.
	MaxRequests      uint32
	Interval         time.Duration
	OpenTimeout      time.Duration
	FailureThreshold uint32
}

func DefaultIndexerConfig(baseURL string) IndexerConfig {
	return IndexerConfig{
		BaseURL:          baseURL,
		Timeout:          10 * time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
		OpenTimeout:      30 * time.Second,
		FailureThreshold: 5,
	}
}

// IndexerClient reads accounts from, and forwards instructions to, an
// indexer that follows the learning program. Transport failures and 5xx
// responses count against a circuit breaker; while it is open every call
// fails fast with ErrIndexerUnavailable.
type IndexerClient struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*indexerResponse]
	logger  *zap.Logger
}

type indexerResponse struct {
	status int
	body   []byte
}

type indexerError struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

type balanceResponse struct {
	XP uint64 `json:"xp"`
}

func NewIndexerClient(cfg IndexerConfig, logger *zap.Logger) *IndexerClient {
	logger = logger.Named("indexer")
	settings := gobreaker.Settings{
		Name:        "indexer",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &IndexerClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: gobreaker.NewCircuitBreaker[*indexerResponse](settings),
		logger:  logger,
	}
}

func (c *IndexerClient) FetchBalance(ctx context.Context, learner string) (uint64, error) {
	var out balanceResponse
	if err := c.get(ctx, "/v1/learners/"+url.PathEscape(learner)+"/balance", &out); err != nil {
		return 0, err
	}
	return out.XP, nil
}

func (c *IndexerClient) FetchProfile(ctx context.Context, learner string) (*Profile, error) {
	var out Profile
	if err := c.get(ctx, "/v1/learners/"+url.PathEscape(learner)+"/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *IndexerClient) FetchEnrollment(ctx context.Context, courseID, learner string) (*Enrollment, error) {
	var out Enrollment
	path := "/v1/courses/" + url.PathEscape(courseID) + "/enrollments/" + url.PathEscape(learner)
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *IndexerClient) FetchCourse(ctx context.Context, courseID string) (*Course, error) {
	var out Course
	if err := c.get(ctx, "/v1/courses/"+url.PathEscape(courseID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *IndexerClient) SubmitInstruction(ctx context.Context, ins Instruction) (*Receipt, error) {
	body, err := json.Marshal(ins)
	if err != nil {
		return nil, err
	}
	res, err := c.do(ctx, http.MethodPost, "/v1/instructions", body)
	if err != nil {
		return nil, err
	}
	if err := decodeError(res); err != nil {
		return nil, err
	}

	var out Receipt
	if err := json.Unmarshal(res.body, &out); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	c.logger.Debug("instruction submitted",
		zap.String("kind", string(ins.Kind)),
		zap.String("signature", out.Signature))
	return &out, nil
}

func (c *IndexerClient) get(ctx context.Context, path string, out any) error {
	res, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := decodeError(res); err != nil {
		return err
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends one request through the breaker. Client errors are returned as
// responses so a stream of 404s does not open the circuit.
func (c *IndexerClient) do(ctx context.Context, method, path string, body []byte) (*indexerResponse, error) {
	res, err := c.breaker.Execute(func() (*indexerResponse, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxIndexerBody))
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		return &indexerResponse{status: resp.StatusCode, body: data}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrIndexerUnavailable)
		}
		c.logger.Warn("indexer request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrIndexerUnavailable, err)
	}
	return res, nil
}

// decodeError maps 4xx responses onto ledger errors.
func decodeError(res *indexerResponse) error {
	if res.status < http.StatusBadRequest {
		return nil
	}

	var body indexerError
	_ = json.Unmarshal(res.body, &body)
	if sentinel, ok := errorCodes[body.Code]; ok {
		if body.Error != "" {
			return fmt.Errorf("%w: %s", sentinel, body.Error)
		}
		return sentinel
	}
	if res.status == http.StatusNotFound {
		return ErrAccountNotFound
	}
	if body.Error == "" {
		body.Error = http.StatusText(res.status)
	}
	return fmt.Errorf("indexer: status %d: %s", res.status, body.Error)
}
