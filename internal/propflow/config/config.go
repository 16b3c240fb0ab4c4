// Package config loads propflow settings from defaults, an optional
// .propflow.yaml, PROPFLOW_* environment variables and command line flags,
// in increasing order of precedence.
package config

import (
	"io"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kilianc/propflow/internal/propflow/driver"
	"github.com/kilianc/propflow/internal/propflow/extract"
	"github.com/kilianc/propflow/internal/propflow/parse"
	"github.com/kilianc/propflow/internal/propflow/report"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName  = ".propflow"
	EnvPrefix = "PROPFLOW"
)

type Config struct {
	OutputDir   string      `mapstructure:"output_dir"`
	Mode        string      `mapstructure:"mode"`
	Format      string      `mapstructure:"format"`
	MaxDepth    int         `mapstructure:"max_depth"`
	Workers     int         `mapstructure:"workers"`
	Extensions  []string    `mapstructure:"extensions"`
	Exclude     []string    `mapstructure:"exclude"`
	MaxFileSize int         `mapstructure:"max_file_size"`
	LogLevel    string      `mapstructure:"log_level"`
	Stdout      bool        `mapstructure:"stdout"`
	Watch       WatchConfig `mapstructure:"watch"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// flagKeys maps config keys to the flags that override them.
var flagKeys = []struct{ key, flag string }{
	{"output_dir", "output-dir"},
	{"mode", "mode"},
	{"format", "format"},
	{"max_depth", "max-depth"},
	{"workers", "workers"},
	{"extensions", "ext"},
	{"exclude", "exclude"},
	{"max_file_size", "max-file-size"},
	{"log_level", "log-level"},
	{"stdout", "stdout"},
	{"watch.interval", "interval"},
}

// New returns a viper instance with propflow defaults and environment
// lookup configured.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", ".")
	v.SetDefault("mode", report.ModeAll.String())
	v.SetDefault("format", string(report.EncodingMarkdown))
	v.SetDefault("max_depth", extract.DefaultMaxDepth)
	v.SetDefault("workers", 0)
	v.SetDefault("extensions", parse.Extensions)
	v.SetDefault("exclude", []string{})
	v.SetDefault("max_file_size", parse.DefaultMaxFileSize)
	v.SetDefault("log_level", "info")
	v.SetDefault("stdout", false)
	v.SetDefault("watch.interval", driver.DefaultWatchInterval)
}

// RegisterFlags adds the flags that override config keys to fs. Flags not
// present in fs are skipped by BindFlags, so commands may register a subset.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("output-dir", "o", ".", "directory that receives the reports")
	fs.String("mode", report.ModeAll.String(), "top-level trees to report: all or first")
	fs.StringP("format", "f", string(report.EncodingMarkdown), "report format: markdown, json or yaml")
	fs.Int("max-depth", extract.DefaultMaxDepth, "maximum component nesting per tree")
	fs.IntP("workers", "j", 0, "files processed in parallel (0 = number of CPUs)")
	fs.StringSlice("ext", parse.Extensions, "source file extensions")
	fs.StringSlice("exclude", nil, "doublestar patterns of paths to skip")
	fs.Int("max-file-size", parse.DefaultMaxFileSize, "skip sources larger than this many bytes")
	fs.String("log-level", "info", "log level: debug, info, warn or error")
	fs.Bool("stdout", false, "print reports to stdout instead of writing files")
}

// BindFlags binds every registered flag of fs to its config key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var errs []error
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			errs = append(errs, errors.Wrapf(err, "bind --%s", fk.flag))
		}
	}
	return errors.Join(errs...)
}

// Load reads the config file, if any, and decodes the merged settings.
// An explicit file must exist; the default .propflow.yaml in dir is
// optional.
func Load(v *viper.Viper, file, dir string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.Extensions = normalizeExtensions(cfg.Extensions)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func normalizeExtensions(exts []string) []string {
	out := lo.FilterMap(exts, func(e string, _ int) (string, bool) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			return "", false
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		return e, true
	})
	return lo.Uniq(out)
}

func (c *Config) Validate() error {
	var errs []error
	if _, err := report.ParseMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if _, err := report.ParseEncoding(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, errors.Wrap(err, "log_level"))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, errors.Newf("max_depth must be positive, got %d", c.MaxDepth))
	}
	if c.Workers < 0 {
		errs = append(errs, errors.Newf("workers must not be negative, got %d", c.Workers))
	}
	if c.MaxFileSize < 1 {
		errs = append(errs, errors.Newf("max_file_size must be positive, got %d", c.MaxFileSize))
	}
	if c.Watch.Interval <= 0 {
		errs = append(errs, errors.Newf("watch.interval must be positive, got %s", c.Watch.Interval))
	}
	if bad := lo.Without(c.Extensions, parse.Extensions...); len(bad) > 0 {
		errs = append(errs, errors.Wrapf(ErrUnsupportedExtension, "%s", strings.Join(bad, ", ")))
	}
	for _, pat := range c.Exclude {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, errors.Newf("exclude: bad pattern %q", pat))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return errors.Mark(err, ErrInvalidConfig)
	}
	return nil
}

// Level returns the configured log level, info when it does not parse.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// DriverOptions translates the config into driver options. stdout is only
// used when the stdout setting is on.
func (c *Config) DriverOptions(stdout io.Writer, logger *log.Logger) (driver.Options, error) {
	mode, err := report.ParseMode(c.Mode)
	if err != nil {
		return driver.Options{}, err
	}
	enc, err := report.ParseEncoding(c.Format)
	if err != nil {
		return driver.Options{}, err
	}
	opt := driver.Options{
		OutputDir:   c.OutputDir,
		Report:      report.Options{Mode: mode, Encoding: enc},
		MaxDepth:    c.MaxDepth,
		MaxFileSize: c.MaxFileSize,
		Workers:     c.Workers,
		Extensions:  c.Extensions,
		Exclude:     c.Exclude,
		Logger:      logger,
	}
	if c.Stdout {
		opt.Stdout = stdout
	}
	return opt, nil
}
