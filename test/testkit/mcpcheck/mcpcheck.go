// Package mcpcheck probes an MCP server over the streamable-HTTP transport
// (2025-03-26): the handshake through the SDK client, plus a raw probe for
// the transport-level properties the SDK hides.
package mcpcheck

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

const ProtocolVersion = "2025-03-26"

var ErrNoSSEData = errors.New("no SSE data event in response")

// HandshakeResult is what the server negotiated during initialize.
type HandshakeResult struct {
	ProtocolVersion string
	ServerName      string
	ServerVersion   string
}

// Handshake performs the MCP initialize exchange and returns the negotiated
// protocol version and server info.
func Handshake(ctx context.Context, endpoint string) (HandshakeResult, error) {
	mcpClient, err := client.NewStreamableHttpClient(endpoint)
	if err != nil {
		return HandshakeResult{}, fmt.Errorf("failed to create MCP client: %w", err)
	}
	defer mcpClient.Close()

	initResult, err := mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: struct {
			ProtocolVersion string                 `json:"protocolVersion"`
			Capabilities    mcp.ClientCapabilities `json:"capabilities"`
			ClientInfo      mcp.Implementation     `json:"clientInfo"`
		}{
			ProtocolVersion: ProtocolVersion,
			ClientInfo: mcp.Implementation{
				Name:    "pipeline-e2e",
				Version: "1.0.0",
			},
			Capabilities: mcp.ClientCapabilities{},
		},
	})
	if err != nil {
		return HandshakeResult{}, fmt.Errorf("failed to initialize MCP protocol: %w", err)
	}

	return HandshakeResult{
		ProtocolVersion: initResult.ProtocolVersion,
		ServerName:      initResult.ServerInfo.Name,
		ServerVersion:   initResult.ServerInfo.Version,
	}, nil
}

// RawResult captures the transport-level view of one initialize POST.
type RawResult struct {
	StatusCode  int
	ContentType string
	FirstEvent  map[string]any
}

// RawInitialize POSTs an initialize message directly and reports status
// code, content type, and the first SSE data event. Used to assert the
// transport contract (200, text/event-stream) that the SDK client does not
// expose.
func RawInitialize(ctx context.Context, endpoint string) (RawResult, error) {
	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "pipeline-e2e", "version": "1.0.0"},
		},
		"id": 1,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return RawResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(raw)))
	if err != nil {
		return RawResult{}, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return RawResult{}, fmt.Errorf("failed to reach MCP endpoint %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	result := RawResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	if !strings.Contains(result.ContentType, "text/event-stream") {
		return result, nil
	}

	event, err := readFirstSSEData(resp)
	if err != nil {
		return result, err
	}

	result.FirstEvent = event

	return result, nil
}

func readFirstSSEData(resp *http.Response) (map[string]any, error) {
	scanner := bufio.NewScanner(resp.Body)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}

		var event map[string]any
		if err := json.Unmarshal([]byte(strings.TrimSpace(line[len("data: "):])), &event); err != nil {
			return nil, fmt.Errorf("failed to decode SSE data event: %w", err)
		}

		return event, nil
	}

	return nil, ErrNoSSEData
}
