// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServerConfig holds settings for the local web UI server.
type ServerConfig struct {
	// Host is the interface to listen on (default "localhost").
	Host string `json:"host" yaml:"host" mapstructure:"host"`

	// Port is the TCP port to listen on (default 5000).
	Port int `json:"port" yaml:"port" mapstructure:"port"`

	// Debug enables debug-level logging.
	Debug bool `json:"debug" yaml:"debug" mapstructure:"debug"`

	// ReadTimeout bounds reading a request, including multipart uploads.
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a response. Rollover of a large upload
	// happens inside the request, so this is generous.
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`

	// MaxUploadBytes caps the size of one multipart request (default 64 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// PathsConfig holds the working directories and files the application uses.
type PathsConfig struct {
	// ProcessedDir receives rewritten letters, PDFs and signed PDFs
	// (default "temp/complete"). The PROCESSED_FILES_DIRECTORY user setting
	// overrides it.
	ProcessedDir string `json:"processed_dir" yaml:"processed_dir" mapstructure:"processed_dir"`

	// ProcessingDir is the parent of per-request upload directories
	// (default "temp/processing").
	ProcessingDir string `json:"processing_dir" yaml:"processing_dir" mapstructure:"processing_dir"`

	// SettingsFile is the user settings JSON file (default "user-config.json").
	SettingsFile string `json:"settings_file" yaml:"settings_file" mapstructure:"settings_file"`

	// FrontendDir, when set, is served at "/".
	FrontendDir string `json:"frontend_dir" yaml:"frontend_dir" mapstructure:"frontend_dir"`

	// LogDir, when set, receives app.log in addition to stderr (default "logs").
	LogDir string `json:"log_dir" yaml:"log_dir" mapstructure:"log_dir"`
}

// HistoryConfig holds settings for the processing history database.
type HistoryConfig struct {
	// DBPath is the SQLite database file (default "temp/history.db").
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// MaxResults is the default number of records listed (default 50).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ConversionBackend identifies the Word-to-PDF conversion tool.
type ConversionBackend string

const (
	BackendContainer ConversionBackend = "container"
	BackendSoffice   ConversionBackend = "soffice"
)

// ConversionConfig holds settings for Word-to-PDF conversion.
type ConversionConfig struct {
	// Backend selects the converter: container or soffice.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Image is the container image used by the container backend
	// (default "docx2pdf:latest").
	Image string `json:"image" yaml:"image" mapstructure:"image"`

	// Timeout bounds one conversion attempt (default 2m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// Retries is how many times a failed conversion is retried with
	// exponential backoff (default 2).
	Retries int `json:"retries" yaml:"retries" mapstructure:"retries"`
}

// SignatureConfig holds settings for PDF signature stamping.
type SignatureConfig struct {
	// Path is a one-page PDF containing the signature image
	// (default "signature.pdf").
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// Timeout bounds locating and stamping one PDF (default 1m).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// AppConfig groups all configuration sections.
type AppConfig struct {
	Server     ServerConfig     `json:"server" yaml:"server" mapstructure:"server"`
	Paths      PathsConfig      `json:"paths" yaml:"paths" mapstructure:"paths"`
	History    HistoryConfig    `json:"history" yaml:"history" mapstructure:"history"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Signature  SignatureConfig  `json:"signature" yaml:"signature" mapstructure:"signature"`

	// SecretsDir holds credential files such as shutdown-token (default ".secrets/").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}
