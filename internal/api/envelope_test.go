package api

import (
	"encoding/json/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeTransformer_Success(t *testing.T) {
	data := map[string]string{"id": "test-123", "name": "Test Item"}

	result, err := EnvelopeTransformer(nil, "200", data)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var output map[string]any
	require.NoError(t, json.Unmarshal(raw, &output))

	assert.Equal(t, true, output["success"])
	assert.Contains(t, output, "data")
	assert.NotContains(t, output, "error")
}

func TestEnvelopeTransformer_SuccessNilData(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "204", nil)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var output map[string]any
	require.NoError(t, json.Unmarshal(raw, &output))

	assert.Equal(t, true, output["success"])
	assert.NotContains(t, output, "data")
}

func TestEnvelopeTransformer_SimpleError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "404", &APIError{Message: "Resource not found"})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var output map[string]any
	require.NoError(t, json.Unmarshal(raw, &output))

	assert.Equal(t, false, output["success"])
	assert.Contains(t, output, "error")
	assert.IsType(t, "", output["error"])
}

func TestEnvelopeTransformer_DetailedError(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "409", &APIError{
		Code:    "CONFLICT",
		Message: "Entity already exists",
		Details: map[string]string{"existing_id": "abc-123"},
	})
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var output map[string]any
	require.NoError(t, json.Unmarshal(raw, &output))

	assert.Contains(t, output, "code")
	assert.Contains(t, output, "message")
	assert.Contains(t, output, "details")
	assert.IsType(t, "", output["code"])
	assert.IsType(t, "", output["message"])
}

// The version field is named exactly "v". Clients parse it by that name and
// break silently on a rename.
func TestEnvelopeTransformer_VersionFieldName(t *testing.T) {
	result, err := EnvelopeTransformer(nil, "200", nil)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var output map[string]any
	require.NoError(t, json.Unmarshal(raw, &output))

	assert.Contains(t, output, "v")
	assert.NotContains(t, output, "version")
	assert.NotContains(t, output, "Version")
}
