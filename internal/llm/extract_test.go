package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/autodev/internal/models"
)

func TestExtractJSON_Bare(t *testing.T) {
	out, err := extractJSON(`{"a": 1}`)
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractJSON_Fenced(t *testing.T) {
	out, err := extractJSON("```json\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractJSON_FencedNoLanguage(t *testing.T) {
	out, err := extractJSON("```\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, out)
}

func TestExtractJSON_ProseAroundObject(t *testing.T) {
	out, err := extractJSON(`Here is the result: {"verdict": "APPROVE"} hope that helps!`)
	require.NoError(t, err)
	assert.Equal(t, `{"verdict": "APPROVE"}`, out)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := extractJSON("I could not produce a changeset, sorry.")
	var extractErr *ErrExtract
	require.ErrorAs(t, err, &extractErr)
}

func TestDecodeResponse_ValidChangeSet(t *testing.T) {
	raw := "```json\n" + `{
		"files": [{"path": "main.go", "content": "package main"}],
		"branch_suffix": "add-logging",
		"commit_message": "feat: add logging",
		"pr_title": "feat: add logging",
		"pr_body": "Adds logging."
	}` + "\n```"

	var cs models.ChangeSet
	require.NoError(t, decodeResponse(raw, &cs))
	require.Len(t, cs.Files, 1)
	assert.Equal(t, "main.go", cs.Files[0].Path)
	assert.Equal(t, "add-logging", cs.BranchSuffix)
}

func TestDecodeResponse_MalformedJSONIsSchemaError(t *testing.T) {
	var cs models.ChangeSet
	err := decodeResponse(`{"files": [`+"}", &cs)

	var schemaErr *ErrSchema
	require.ErrorAs(t, err, &schemaErr)

	var extractErr *ErrExtract
	assert.NotErrorAs(t, err, &extractErr, "malformed JSON is a schema failure, not an extraction failure")
}

func TestDecodeResponse_NoJSONIsExtractError(t *testing.T) {
	var cs models.ChangeSet
	err := decodeResponse("no json here", &cs)

	var extractErr *ErrExtract
	require.ErrorAs(t, err, &extractErr)
}

func TestDecodeResponse_TypeMismatchIsSchemaError(t *testing.T) {
	var review models.Review
	err := decodeResponse(`{"verdict": 12}`, &review)

	var schemaErr *ErrSchema
	require.ErrorAs(t, err, &schemaErr)
	assert.Error(t, schemaErr.Unwrap())
}
