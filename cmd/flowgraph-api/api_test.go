package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/flowgraph/pkg/persistence/file"
)

const jokeFlowYAML = `
id: joke_flow
name: Joke Flow
nodes:
  - name: search
    tool: web_search
    inputs:
      query: ${flow.topic}
      api_key: serp_connection
  - name: joke
    tool: joke_llm
    type: llm
    connection: azure_open_ai_connection
    inputs:
      context: ${search.output}
inputs:
  topic:
    type: string
outputs:
  answer:
    type: string
    reference: ${joke.output}
tools:
  - name: web_search
    type: python
    inputs:
      query:
        type: [string]
      api_key:
        type: [SerpConnection]
  - name: joke_llm
    type: llm
`

func setupTestApp(t *testing.T, tempDir string) *fiber.App {
	t.Helper()

	repository := file.NewRepository(tempDir, nil, nil)

	api := NewAPI(slog.Default(), repository)

	return api.App()
}

func writeFlowFile(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Logf("Failed to close response body: %v", err)
	}
}

func TestAPI_RootEndpoint(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Flowgraph API", string(body))
}

func TestAPI_Liveness(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetFlows_Empty(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/flows", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var flows []map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&flows))
	assert.Empty(t, flows)
}

func TestAPI_GetFlow(t *testing.T) {
	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	app := setupTestApp(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/flows/joke_flow", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var flow map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&flow))
	assert.Equal(t, "joke_flow", flow["id"])
	assert.Equal(t, "Joke Flow", flow["name"])
}

func TestAPI_GetFlow_NotFound(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/flows/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_GetFlowConnections(t *testing.T) {
	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	app := setupTestApp(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/flows/joke_flow/connections", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string][]string

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, []string{"azure_open_ai_connection", "serp_connection"}, payload["connection_names"])
}

func TestAPI_GetFlowNode(t *testing.T) {
	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	app := setupTestApp(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/flows/joke_flow/nodes/search", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var node map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&node))
	assert.Equal(t, "search", node["name"])
	assert.Equal(t, "web_search", node["tool"])
}

func TestAPI_GetFlowNode_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	app := setupTestApp(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/flows/joke_flow/nodes/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_ValidateFlow(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	req := httptest.NewRequest(http.MethodPost, "/flows/validate", strings.NewReader(jokeFlowYAML))
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload map[string]any

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, true, payload["valid"])
	assert.Equal(t, "joke_flow", payload["id"])
}

func TestAPI_ValidateFlow_Invalid(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	invalid := `
name: Broken Flow
nodes:
  - tool: web_search
`

	req := httptest.NewRequest(http.MethodPost, "/flows/validate", strings.NewReader(invalid))
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_HealthCheck(t *testing.T) {
	app := setupTestApp(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
