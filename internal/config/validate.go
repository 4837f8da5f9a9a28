package config

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the settings a command depends on are present.
// Mode is one of "po", "photometric", "weekly", "serve" or "runs".
func (c *Config) Validate(mode string) error {
	var missing []string
	need := func(ok bool, key string) {
		if !ok {
			missing = append(missing, key+" is required")
		}
	}

	llm := func() {
		switch c.LLM.Provider {
		case "anthropic":
			need(c.Anthropic.Key != "", "anthropic.key")
		case "gemini":
			need(c.Gemini.Key != "", "gemini.key")
		default:
			missing = append(missing, "llm.provider must be anthropic or gemini")
		}
		need(c.LLM.Model != "", "llm.model")
	}
	odoo := func() {
		if !c.Odoo.ImportEnabled {
			return
		}
		need(c.Odoo.URL != "", "odoo.url")
		need(c.Odoo.DB != "", "odoo.db")
		need(c.Odoo.Username != "", "odoo.username")
		need(c.Odoo.Password != "", "odoo.password")
		need(c.Odoo.DefaultCompany != "", "odoo.default_company")
	}
	share := func() {
		switch c.Share.Provider {
		case "nextcloud":
			need(c.Share.Nextcloud.URL != "", "share.nextcloud.url")
			need(c.Share.Nextcloud.Username != "", "share.nextcloud.username")
			need(c.Share.Nextcloud.Password != "", "share.nextcloud.password")
		case "ftp":
			need(c.Share.FTP.Host != "", "share.ftp.host")
		case "s3":
			need(c.Share.S3.Bucket != "", "share.s3.bucket")
		default:
			missing = append(missing, "share.provider must be nextcloud, ftp or s3")
		}
	}

	switch mode {
	case "po":
		llm()
		odoo()
	case "photometric":
		llm()
		share()
	case "weekly":
		llm()
	case "serve":
		llm()
		odoo()
		share()
		need(c.Server.Port > 0 && c.Server.Port < 65536, "server.port in 1-65535")
	case "runs":
	default:
		return eris.Errorf("config: unknown validation mode %q", mode)
	}

	if c.OCR.Provider == "mistral" && c.OCR.MistralKey == "" && mode != "runs" && mode != "weekly" {
		missing = append(missing, "ocr.mistral_api_key is required")
	}

	if len(missing) > 0 {
		return eris.Errorf("config: invalid %s config: %s", mode, strings.Join(missing, "; "))
	}
	return nil
}
