// Package api is a thin HTTP client for the chess server's JSON API.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"chessgame/internal/client/display"
	"chessgame/internal/server/core"
)

// HealthResponse mirrors the server's /health payload
type HealthResponse struct {
	Status  string `json:"status"`
	Time    int64  `json:"time"`
	Storage string `json:"storage"`
	Games   int    `json:"games"`
}

// APIError is returned for any response with status >= 400
type APIError struct {
	StatusCode int
	Body       core.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Details != "" {
		return fmt.Sprintf("%s (%s): %s", e.Body.Error, e.Body.Code, e.Body.Details)
	}
	if e.Body.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Body.Error, e.Body.Code)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Out        io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			// Long-poll waits up to 25s server side
			Timeout: 40 * time.Second,
		},
		Out: os.Stdout,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(url string) {
	c.BaseURL = strings.TrimRight(url, "/")
}

func (c *Client) doRequest(method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		if c.Verbose {
			fmt.Fprintf(c.Out, "%s[API] %s %s%s\n%s\n", display.Blue, method, path, display.Reset, jsonData)
		}
	} else if c.Verbose {
		fmt.Fprintf(c.Out, "%s[API] %s %s%s\n", display.Blue, method, path, display.Reset)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if c.Verbose {
		statusColor := display.Green
		if resp.StatusCode >= 400 {
			statusColor = display.Red
		}
		fmt.Fprintf(c.Out, "%s[%d %s]%s\n", statusColor, resp.StatusCode, http.StatusText(resp.StatusCode), display.Reset)
		if len(respBody) > 0 {
			var pretty interface{}
			if err := json.Unmarshal(respBody, &pretty); err == nil {
				display.PrettyPrintJSON(c.Out, pretty)
			} else {
				fmt.Fprintln(c.Out, string(respBody))
			}
		}
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		json.Unmarshal(respBody, &apiErr.Body)
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// API Methods

func (c *Client) Health() (*HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return &resp, err
}

func (c *Client) CreateGame(req *core.CreateGameRequest) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games", req, &resp)
	return &resp, err
}

func (c *Client) GetGame(gameID string) (*core.GameResponse, error) {
	var resp core.GameResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games/"+gameID, nil, &resp)
	return &resp, err
}

// GetGameWithPoll blocks server side until the move count changes or the
// wait times out
func (c *Client) GetGameWithPoll(gameID string, moveCount int) (*core.GameResponse, error) {
	var resp core.GameResponse
	path := fmt.Sprintf("/api/v1/games/%s?wait=true&moveCount=%d", gameID, moveCount)
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return &resp, err
}

func (c *Client) MakeMove(gameID, source, destination string) (*core.GameResponse, error) {
	req := &core.MoveRequest{Source: source, Destination: destination}
	var resp core.GameResponse
	err := c.doRequest(http.MethodPost, "/api/v1/games/"+gameID+"/moves", req, &resp)
	return &resp, err
}

func (c *Client) GetBoard(gameID string) (*core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games/"+gameID+"/board", nil, &resp)
	return &resp, err
}

func (c *Client) GetStatus(gameID string) (*core.StatusResponse, error) {
	var resp core.StatusResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games/"+gameID+"/status", nil, &resp)
	return &resp, err
}

func (c *Client) GetResult(gameID string) (*core.ResultResponse, error) {
	var resp core.ResultResponse
	err := c.doRequest(http.MethodGet, "/api/v1/games/"+gameID+"/result", nil, &resp)
	return &resp, err
}

func (c *Client) EndGame(gameID string) error {
	return c.doRequest(http.MethodDelete, "/api/v1/games/"+gameID, nil, nil)
}

// RawRequest performs a raw HTTP request for debugging purposes
func (c *Client) RawRequest(method, path string, body string) error {
	var bodyData interface{}
	if body != "" {
		if err := json.Unmarshal([]byte(body), &bodyData); err != nil {
			bodyData = body
		}
	}

	verbose := c.Verbose
	c.Verbose = true
	defer func() { c.Verbose = verbose }()

	return c.doRequest(method, path, bodyData, nil)
}
