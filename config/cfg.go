package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	TemplateFieldName string

	// PatternsConfig selects archive entries by Ant style globs ("**" spans
	// directories). Entry is selected when it matches any include and no
	// exclude pattern.
	PatternsConfig struct {
		Include []string `yaml:"include" validate:"dive,required"`
		Exclude []string `yaml:"exclude" validate:"dive,required"`
	}

	WebFragmentConfig struct {
		Enable         bool   `yaml:"enable"`
		Name           string `yaml:"name"`
		Root           string `yaml:"root" validate:"omitempty,excludesall=/"`
		Output         string `yaml:"output" validate:"required_if=Enable true"`
		PatternsConfig `yaml:",inline"`
	}

	XMLMergeConfig struct {
		Path    string   `yaml:"path"`
		Include []string `yaml:"include" validate:"min=1,dive,required"`
		Exclude []string `yaml:"exclude" validate:"dive,required"`
	}

	MergeConfig struct {
		FixZip      bool              `yaml:"fix_zip"`
		WebFragment WebFragmentConfig `yaml:"web_fragment"`
		XMLMerge    []XMLMergeConfig  `yaml:"xml_merge" validate:"dive"`
		Ordered     PatternsConfig    `yaml:"ordered"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Merge     MergeConfig    `yaml:"merge"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, etree paths use syntax which
	// should not be touched by template expansion
	XMLMergePathFieldName TemplateFieldName = "path"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(XMLMergePathFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
