package llm

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Prompt names in the catalog.
const (
	PromptPO                 = "po"
	PromptPhotometricTable   = "photometric_table"
	PromptPhotometricSummary = "photometric_summary"
	PromptWeekly             = "weekly"
)

//go:embed prompts/catalog.yaml
var builtinCatalog []byte

// Catalog maps prompt names to instruction templates.
type Catalog struct {
	prompts map[string]string
}

type catalogFile struct {
	Prompts map[string]string `yaml:"prompts"`
}

// LoadCatalog returns the built-in catalog, overlaid with the templates in
// overridePath when it is non-empty.
func LoadCatalog(overridePath string) (*Catalog, error) {
	base, err := parseCatalog(builtinCatalog)
	if err != nil {
		return nil, eris.Wrap(err, "llm: parse builtin catalog")
	}
	if overridePath == "" {
		return &Catalog{prompts: base}, nil
	}

	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, eris.Wrapf(err, "llm: read catalog %s", overridePath)
	}
	over, err := parseCatalog(data)
	if err != nil {
		return nil, eris.Wrapf(err, "llm: parse catalog %s", overridePath)
	}
	for k, v := range over {
		base[k] = v
	}
	return &Catalog{prompts: base}, nil
}

func parseCatalog(data []byte) (map[string]string, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Prompts == nil {
		f.Prompts = map[string]string{}
	}
	return f.Prompts, nil
}

// Get returns the template registered under name.
func (c *Catalog) Get(name string) (string, error) {
	t, ok := c.prompts[name]
	if !ok || t == "" {
		return "", eris.Errorf("llm: prompt %q not found", name)
	}
	return t, nil
}
