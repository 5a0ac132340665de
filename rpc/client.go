// Package rpc implements the Lotus node JSON-RPC client: fetching
// unsolved-block templates and submitting solved ones over HTTP Basic Auth.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is a thin JSON-RPC 2.0 HTTP client using Basic Auth, matching the
// Lotus node's request/response shape.
type Client struct {
	url        string
	user       string
	password   string
	httpClient *http.Client
}

// NewClient constructs a Client against a node or pool endpoint. httpClient
// may be nil, in which case http.DefaultClient's timeouts apply.
func NewClient(url, user, password string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, user: user, password: password, httpClient: httpClient}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// ErrUnauthorized is returned when the node responds 401, so callers can
// emit the "wrong username/password" hint without string-matching errors.
type ErrUnauthorized struct{}

func (ErrUnauthorized) Error() string { return "rpc: unauthorized (401)" }

// call performs one JSON-RPC request and returns the raw result/error
// payloads for the caller to interpret.
func (c *Client) call(method string, params ...interface{}) (rpcResponse, error) {
	reqBody := rpcRequest{JSONRPC: "2.0", ID: "miner", Method: method, Params: params}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return rpcResponse{}, fmt.Errorf("rpc: marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return rpcResponse{}, fmt.Errorf("rpc: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.user != "" || c.password != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rpcResponse{}, fmt.Errorf("rpc: %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return rpcResponse{}, ErrUnauthorized{}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return rpcResponse{}, fmt.Errorf("rpc: %s: unexpected status %d", method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return rpcResponse{}, fmt.Errorf("rpc: %s: read body: %w", method, err)
	}

	var out rpcResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return rpcResponse{}, fmt.Errorf("rpc: %s: unparseable response: %w", method, err)
	}
	return out, nil
}

// RawUnsolvedBlockAndTarget is the decoded getrawunsolvedblock result.
type RawUnsolvedBlockAndTarget struct {
	BlockHex string `json:"blockhex"`
	Target   string `json:"target"`
}

// GetRawUnsolvedBlock calls getrawunsolvedblock(miner_addr).
func (c *Client) GetRawUnsolvedBlock(minerAddr string) (RawUnsolvedBlockAndTarget, error) {
	resp, err := c.call("getrawunsolvedblock", minerAddr)
	if err != nil {
		return RawUnsolvedBlockAndTarget{}, err
	}
	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		return RawUnsolvedBlockAndTarget{}, fmt.Errorf("rpc: getrawunsolvedblock: %s", resp.Error)
	}
	var out RawUnsolvedBlockAndTarget
	if err := json.Unmarshal(resp.Result, &out); err != nil {
		return RawUnsolvedBlockAndTarget{}, fmt.Errorf("rpc: getrawunsolvedblock: %w", err)
	}
	return out, nil
}

// SubmitBlock calls submitblock(blockhex[, miner_addr]) and returns the raw
// result/error payloads for interpretation by the Submitter.
func (c *Client) SubmitBlock(blockHex, minerAddr string, poolMining bool) (result json.RawMessage, rpcErr json.RawMessage, err error) {
	var params []interface{}
	if poolMining {
		params = []interface{}{blockHex, minerAddr}
	} else {
		params = []interface{}{blockHex}
	}
	resp, err := c.call("submitblock", params...)
	if err != nil {
		return nil, nil, err
	}
	return resp.Result, resp.Error, nil
}

// defaultTimeout is the request timeout DefaultHTTPClient sets on the
// *http.Client it builds for NewClient.
const defaultTimeout = 30 * time.Second

// DefaultHTTPClient returns an *http.Client with the miner's default
// request timeout.
func DefaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}
