// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"syscall"
	"time"

	"resty.dev/v3"

	apimodel "github.com/platform-engineering-labs/composa/internal/api/model"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

type Client struct {
	endpoint string
	resty    *resty.Client
}

// ClientConfig names the server a client talks to.
type ClientConfig struct {
	URL      string
	Port     int
	ClientID string
}

func NewClient(cfg ClientConfig, auth http.Header, net *http.Client) *Client {
	client := resty.New()

	if net != nil {
		client = resty.NewWithClient(net)
	}

	if auth != nil {
		client.SetHeader("Authorization", auth.Get("Authorization"))
	}

	if cfg.ClientID != "" {
		client.SetHeader("X-Composa-Client", cfg.ClientID)
	}

	return &Client{
		endpoint: fmt.Sprintf("%s:%d", cfg.URL, cfg.Port),
		resty:    client,
	}
}

func (c *Client) WaitOnAvailable() bool {
	for {
		resp, _ := c.resty.R().Get(c.endpoint + HealthRoute)
		if resp.StatusCode() == 200 {
			return true
		}

		time.Sleep(1 * time.Second)
	}
}

func (c *Client) Compose(cfg *model.EnvironmentConfig) (*apimodel.ComposeResponse, error) {
	var result apimodel.ComposeResponse

	resp, err := c.resty.R().
		SetResult(&result).
		SetContentType("application/json").
		SetBody(cfg).
		Post(c.endpoint + ComposeRoute)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return nil, syscall.ECONNREFUSED
		}

		return nil, fmt.Errorf("failed to submit composition: %w", err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	switch resp.StatusCode() {
	case http.StatusOK:
		return &result, nil
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, c.parseErrorResponse(resp.Body)
	default:
		return nil, fmt.Errorf("unexpected response code from the composa server: %d - %s", resp.StatusCode(), resp.String())
	}
}

func (c *Client) Validate(cfg *model.EnvironmentConfig) (*apimodel.ValidateResponse, error) {
	var result apimodel.ValidateResponse

	resp, err := c.resty.R().
		SetResult(&result).
		SetContentType("application/json").
		SetBody(cfg).
		Post(c.endpoint + ValidateRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to submit validation: %w", err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	switch resp.StatusCode() {
	case http.StatusOK:
		return &result, nil
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, c.parseErrorResponse(resp.Body)
	default:
		return nil, fmt.Errorf("unexpected response code from the composa server: %d - %s", resp.StatusCode(), resp.String())
	}
}

func (c *Client) Plan(cfg *model.EnvironmentConfig, snapshot []byte) (*apimodel.PlanResponse, error) {
	var result apimodel.PlanResponse

	resp, err := c.resty.R().
		SetResult(&result).
		SetContentType("application/json").
		SetBody(&apimodel.PlanRequest{Config: cfg, Snapshot: snapshot}).
		Post(c.endpoint + PlanRoute)
	if err != nil {
		return nil, fmt.Errorf("failed to submit plan: %w", err)
	}

	//nolint:errcheck
	defer resp.Body.Close()

	switch resp.StatusCode() {
	case http.StatusOK:
		return &result, nil
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return nil, c.parseErrorResponse(resp.Body)
	default:
		return nil, fmt.Errorf("unexpected response code from the composa server: %d - %s", resp.StatusCode(), resp.String())
	}
}

// parseErrorResponse parses the ErrorResponse[T] from the API and returns an appropriate error
func (c *Client) parseErrorResponse(body io.ReadCloser) error {
	bodyBytes, readErr := io.ReadAll(body)
	if readErr != nil {
		return fmt.Errorf("failed to read error response body: %w", readErr)
	}

	var baseError struct {
		Error apimodel.APIError `json:"error"`
	}
	if err := json.Unmarshal(bodyBytes, &baseError); err != nil {
		return fmt.Errorf("failed to parse error type: %w", err)
	}

	switch baseError.Error {
	case apimodel.InvalidAttributes:
		var errResp apimodel.ErrorResponse[apimodel.InvalidAttributesError]
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			return fmt.Errorf("failed to parse InvalidAttributes error: %w", err)
		}
		return &errResp

	case apimodel.AmbiguousComposition:
		var errResp apimodel.ErrorResponse[apimodel.AmbiguousCompositionError]
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			return fmt.Errorf("failed to parse AmbiguousComposition error: %w", err)
		}
		return &errResp

	case apimodel.DanglingReference:
		var errResp apimodel.ErrorResponse[apimodel.DanglingReferenceError]
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			return fmt.Errorf("failed to parse DanglingReference error: %w", err)
		}
		return &errResp

	case apimodel.InvalidConfig:
		var errResp apimodel.ErrorResponse[apimodel.InvalidConfigError]
		if err := json.Unmarshal(bodyBytes, &errResp); err != nil {
			return fmt.Errorf("failed to parse InvalidConfig error: %w", err)
		}
		return &errResp

	default:
		return fmt.Errorf("unknown error type: %s", baseError.Error)
	}
}
