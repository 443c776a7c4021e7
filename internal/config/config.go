// Package config загружает настройки aesdsocket.
//
// Источник один: YAML-файл, путь к которому задаёт переменная
// окружения AESDSOCKET_CONFIG. Если переменная не задана, используются
// значения по умолчанию. Никакого автопоиска файлов нет.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"aesdsocket/internal/linebuf"
	"aesdsocket/internal/persistence/datafile"
)

// EnvVar — переменная окружения с путём к конфигу.
const EnvVar = "AESDSOCKET_CONFIG"

// Config — настройки сервера.
type Config struct {
	// Port — TCP-порт, слушаем на всех адресах.
	Port int `yaml:"port"`

	// DataFile — путь к файлу данных. Поддерживает ${HOME} и ${VAR:-default}.
	DataFile string `yaml:"data_file"`

	// DataFileMode — права файла данных в восьмеричном виде, например "0644".
	DataFileMode string `yaml:"data_file_mode"`

	// ReadChunkSize — размер куска при отправке файла клиенту.
	ReadChunkSize int `yaml:"read_chunk_size"`

	// InitialLineSize — стартовая ёмкость буфера строки.
	InitialLineSize int `yaml:"initial_line_size"`

	// MaxLineBytes — лимит длины сообщения (0 = без лимита).
	MaxLineBytes int `yaml:"max_line_bytes"`

	Log LogConfig `yaml:"log"`
}

// LogConfig — настройки логирования.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level"`

	// Syslog дублирует stderr в системный журнал.
	Syslog bool `yaml:"syslog"`

	// Tag — идентификатор в syslog.
	Tag string `yaml:"tag"`
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	return &Config{
		Port:            9000,
		DataFile:        datafile.DefaultPath,
		DataFileMode:    "0" + strconv.FormatUint(uint64(datafile.DefaultMode), 8),
		ReadChunkSize:   datafile.DefaultChunkSize,
		InitialLineSize: linebuf.DefaultInitialSize,
		MaxLineBytes:    0,
		Log: LogConfig{
			Level:  "info",
			Syslog: true,
			Tag:    "aesdsocket",
		},
	}
}

// Load читает конфиг из файла в AESDSOCKET_CONFIG.
// Без переменной возвращает Default().
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}
	return LoadFile(path)
}

// LoadFile читает конфиг из path поверх значений по умолчанию.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.DataFile = expandVars(cfg.DataFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate проверяет значения.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 1..65535, got %d", c.Port))
	}
	if c.DataFile == "" {
		errs = append(errs, errors.New("data_file is required"))
	}
	if _, err := c.FileMode(); err != nil {
		errs = append(errs, err)
	}
	if c.ReadChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("read_chunk_size must be positive, got %d", c.ReadChunkSize))
	}
	if c.InitialLineSize <= 0 {
		errs = append(errs, fmt.Errorf("initial_line_size must be positive, got %d", c.InitialLineSize))
	}
	if c.MaxLineBytes < 0 {
		errs = append(errs, fmt.Errorf("max_line_bytes must not be negative, got %d", c.MaxLineBytes))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Syslog && c.Log.Tag == "" {
		errs = append(errs, errors.New("log.tag is required when log.syslog is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Addr возвращает адрес для net.Listen: все интерфейсы, порт Port.
func (c *Config) Addr() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// FileMode разбирает DataFileMode.
func (c *Config) FileMode() (os.FileMode, error) {
	mode, err := strconv.ParseUint(c.DataFileMode, 8, 32)
	if err != nil || mode > 0777 {
		return 0, fmt.Errorf("data_file_mode must be an octal permission like \"0644\", got %q", c.DataFileMode)
	}
	return os.FileMode(mode), nil
}

// SlogLevel переводит Level в slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch l.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("log.level must be one of debug, info, warn, error; got %q", l.Level)
	}
}
