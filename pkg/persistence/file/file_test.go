package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgraph/flowgraph/pkg/models"
	"github.com/flowgraph/flowgraph/pkg/persistence"
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
    is_chat_input: true
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

func writeFlowFile(t *testing.T, dir, name, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRepository_GetByID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	repo := NewRepository(dir, nil, nil)

	flow, err := repo.GetByID(context.Background(), "joke_flow")
	require.NoError(t, err)

	assert.Equal(t, "joke_flow", flow.ID)
	assert.Equal(t, "Joke Flow", flow.Name)
	require.Len(t, flow.Nodes, 2)
	assert.Equal(t, models.InputValueTypeFlowInput, flow.Nodes[0].Inputs["query"].ValueType)
	assert.True(t, flow.IsChatFlow())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewRepository(t.TempDir(), nil, nil)

	_, err := repo.GetByID(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestRepository_GetByID_InvalidDefinition(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	// A node without a tool fails schema validation.
	writeFlowFile(t, dir, "broken.yaml", "name: broken\nnodes:\n  - name: only_name\n")

	repo := NewRepository(dir, nil, nil)

	_, err := repo.GetByID(context.Background(), "broken")
	require.Error(t, err)
	assert.True(t, persistence.IsInvalidFlowDefinition(err))
}

func TestRepository_GetByID_ConditionConflictSurfaces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFlowFile(t, dir, "conflict.yaml", `
name: conflict
nodes:
  - name: guarded
    tool: t
    skip:
      when: ${flow.skip}
      is: true
      return: ${other.output}
    activate:
      when: ${flow.mode}
      is: on_value
`)

	repo := NewRepository(dir, nil, nil)

	_, err := repo.GetByID(context.Background(), "conflict")
	require.Error(t, err)
	assert.True(t, models.IsNodeConditionConflict(err))
	assert.Contains(t, err.Error(), "guarded")
}

func TestRepository_List(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)
	writeFlowFile(t, dir, "tiny.yml", "name: tiny\n")

	repo := NewRepository(dir, nil, nil)

	flows, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, flows, 2)
}

func TestRepository_SaveRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	repo := NewRepository(dir, nil, nil)
	ctx := context.Background()

	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	flow, err := repo.GetByID(ctx, "joke_flow")
	require.NoError(t, err)

	flow.ID = "copy"
	require.NoError(t, repo.Save(ctx, flow))

	restored, err := repo.GetByID(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, "Joke Flow", restored.Name)
	assert.Len(t, restored.Nodes, 2)

	names := restored.GetConnectionNames()
	assert.Contains(t, names, "azure_open_ai_connection")
	assert.Contains(t, names, "serp_connection")
}

func TestRepository_Save_AssignsID(t *testing.T) {
	t.Parallel()

	repo := NewRepository(t.TempDir(), nil, nil)

	flow := &models.Flow{Name: "unnamed"}
	require.NoError(t, repo.Save(context.Background(), flow))
	assert.NotEmpty(t, flow.ID)
}

func TestRepository_Delete(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFlowFile(t, dir, "joke_flow.yaml", jokeFlowYAML)

	repo := NewRepository(dir, nil, nil)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "joke_flow"))

	_, err := repo.GetByID(ctx, "joke_flow")
	assert.True(t, persistence.IsFlowNotFound(err))

	err = repo.Delete(ctx, "joke_flow")
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestRepository_HealthCheck(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	assert.NoError(t, NewRepository(dir, nil, nil).HealthCheck(context.Background()))
	assert.Error(t, NewRepository(filepath.Join(dir, "missing"), nil, nil).HealthCheck(context.Background()))
}
