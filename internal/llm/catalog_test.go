package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog_Builtin(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)

	for _, name := range []string{PromptPO, PromptPhotometricTable, PromptPhotometricSummary, PromptWeekly} {
		tmpl, err := c.Get(name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, tmpl)
	}

	po, _ := c.Get(PromptPO)
	assert.Contains(t, po, ContextPlaceholder)
	table, _ := c.Get(PromptPhotometricTable)
	assert.Contains(t, table, "### Product category")
}

func TestLoadCatalog_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompts:\n  weekly: Custom weekly prompt\n"), 0o644))

	c, err := LoadCatalog(path)
	require.NoError(t, err)

	weekly, err := c.Get(PromptWeekly)
	require.NoError(t, err)
	assert.Equal(t, "Custom weekly prompt", weekly)

	_, err = c.Get(PromptPO)
	assert.NoError(t, err, "builtin prompts survive an override")
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm: read catalog")
}

func TestCatalogGet_Unknown(t *testing.T) {
	c, err := LoadCatalog("")
	require.NoError(t, err)
	_, err = c.Get("invoice")
	assert.Error(t, err)
}
