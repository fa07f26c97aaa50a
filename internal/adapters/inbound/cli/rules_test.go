package cli_test

import (
	"encoding/json"
	"testing"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesListCmd(t *testing.T) {
	out, err := execute(t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "style.LineLength")
	assert.Contains(t, out, "best-practice.TodoComment")
	assert.Contains(t, out, "security")
}

func TestRulesListCmd_JSON(t *testing.T) {
	out, err := execute(t, "rules", "list", "--json")
	require.NoError(t, err)

	var results []domain.ValidationResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 8)
	for _, r := range results {
		assert.True(t, r.Valid, r.RuleID)
		require.NotNil(t, r.Descriptor)
	}
}

func TestRulesValidateCmd_AllValid(t *testing.T) {
	out, err := execute(t, "rules", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "8/8 valid")
}

func TestRulesValidateCmd_UnknownRule(t *testing.T) {
	out, err := execute(t, "rules", "validate", "style.LineLenght")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 rules invalid")
	assert.Contains(t, out, "style.LineLength", "suggests the closest identifier")
}
