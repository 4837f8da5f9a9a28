package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	OCR       OCRConfig       `yaml:"ocr" mapstructure:"ocr"`
	Odoo      OdooConfig      `yaml:"odoo" mapstructure:"odoo"`
	Documents DocumentsConfig `yaml:"documents" mapstructure:"documents"`
	Share     ShareConfig     `yaml:"share" mapstructure:"share"`
	Prompts   PromptsConfig   `yaml:"prompts" mapstructure:"prompts"`
	Weekly    WeeklyConfig    `yaml:"weekly" mapstructure:"weekly"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LLMConfig selects the language model used for every prompt.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"`
	Model       string  `yaml:"model" mapstructure:"model"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key string `yaml:"key" mapstructure:"key"`
}

// OCRConfig configures PDF text extraction and the OCR fallback engine.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
	OCRmyPDFPath  string `yaml:"ocrmypdf_path" mapstructure:"ocrmypdf_path"`
	PdfToPPMPath  string `yaml:"pdftoppm_path" mapstructure:"pdftoppm_path"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
	Language      string `yaml:"language" mapstructure:"language"`
	DPI           int    `yaml:"dpi" mapstructure:"dpi"`
	MistralKey    string `yaml:"mistral_api_key" mapstructure:"mistral_api_key"`
	MistralModel  string `yaml:"mistral_model" mapstructure:"mistral_model"`
}

// OdooConfig holds the ERP connection and submission settings.
type OdooConfig struct {
	URL             string  `yaml:"url" mapstructure:"url"`
	WebURL          string  `yaml:"web_url" mapstructure:"web_url"`
	DB              string  `yaml:"db" mapstructure:"db"`
	Username        string  `yaml:"username" mapstructure:"username"`
	Password        string  `yaml:"password" mapstructure:"password"`
	ImportEnabled   bool    `yaml:"import_enabled" mapstructure:"import_enabled"`
	DefaultCompany  string  `yaml:"default_company" mapstructure:"default_company"`
	FallbackCompany string  `yaml:"fallback_company" mapstructure:"fallback_company"`
	PONumberField   string  `yaml:"po_number_field" mapstructure:"po_number_field"`
	DeliveryField   string  `yaml:"delivery_date_field" mapstructure:"delivery_date_field"`
	AttachmentNote  string  `yaml:"attachment_note" mapstructure:"attachment_note"`
	CandidateLimit  int     `yaml:"candidate_limit" mapstructure:"candidate_limit"`
	RateLimit       float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DocumentsConfig declares the required-field sets per document type.
type DocumentsConfig struct {
	PurchaseOrder DocumentTypeConfig `yaml:"purchase_order" mapstructure:"purchase_order"`
}

// DocumentTypeConfig lists required fields for one document type.
type DocumentTypeConfig struct {
	Required     []string `yaml:"required" mapstructure:"required"`
	LineRequired []string `yaml:"line_required" mapstructure:"line_required"`
}

// ShareConfig selects and configures the file-share provider.
type ShareConfig struct {
	Provider  string          `yaml:"provider" mapstructure:"provider"`
	ReportDir string          `yaml:"report_dir" mapstructure:"report_dir"`
	Nextcloud NextcloudConfig `yaml:"nextcloud" mapstructure:"nextcloud"`
	FTP       FTPConfig       `yaml:"ftp" mapstructure:"ftp"`
	S3        S3Config        `yaml:"s3" mapstructure:"s3"`
}

// NextcloudConfig holds WebDAV and OCS share settings.
type NextcloudConfig struct {
	URL      string `yaml:"url" mapstructure:"url"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// FTPConfig holds FTP upload settings.
type FTPConfig struct {
	Host          string `yaml:"host" mapstructure:"host"`
	Username      string `yaml:"username" mapstructure:"username"`
	Password      string `yaml:"password" mapstructure:"password"`
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// S3Config holds object storage settings.
type S3Config struct {
	Bucket      string `yaml:"bucket" mapstructure:"bucket"`
	Region      string `yaml:"region" mapstructure:"region"`
	Endpoint    string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey   string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey   string `yaml:"secret_key" mapstructure:"secret_key"`
	LinkTTLDays int    `yaml:"link_ttl_days" mapstructure:"link_ttl_days"`
}

// PromptsConfig points at an optional prompt catalog overriding the built-in one.
type PromptsConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// WeeklyConfig configures the weekly summary flow.
type WeeklyConfig struct {
	LogPath string `yaml:"log_path" mapstructure:"log_path"`
}

// StoreConfig configures the run log backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// ServerConfig configures the upload API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB    int64    `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("INTAKE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("llm.provider", "anthropic")
	v.SetDefault("llm.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.temperature", 0.0)

	v.SetDefault("ocr.provider", "ocrmypdf")
	v.SetDefault("ocr.pdftotext_path", "pdftotext")
	v.SetDefault("ocr.ocrmypdf_path", "ocrmypdf")
	v.SetDefault("ocr.pdftoppm_path", "pdftoppm")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.mistral_model", "mistral-ocr-latest")

	v.SetDefault("odoo.import_enabled", false)
	v.SetDefault("odoo.po_number_field", "client_order_ref")
	v.SetDefault("odoo.attachment_note", "Attached customer PO")
	v.SetDefault("odoo.candidate_limit", 50)
	v.SetDefault("odoo.rate_limit", 5.0)
	v.SetDefault("odoo.timeout_secs", 30)

	v.SetDefault("documents.purchase_order.required", []string{"customer", "order_date", "salesperson", "order_lines"})
	v.SetDefault("documents.purchase_order.line_required", []string{"product", "quantity", "price"})

	v.SetDefault("share.provider", "nextcloud")
	v.SetDefault("share.report_dir", "/Documents/PER/Photometry Report")
	v.SetDefault("share.ftp.timeout_secs", 30)
	v.SetDefault("share.s3.region", "us-east-1")
	v.SetDefault("share.s3.link_ttl_days", 7)

	v.SetDefault("weekly.log_path", "weekly.log")

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "intake.db")

	v.SetDefault("server.port", 7960)
	v.SetDefault("server.max_upload_mb", 32)
	v.SetDefault("server.allowed_origins", []string{"*"})
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
