package sway

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config holds the settings shared by a client and a render context.
type Config struct {
	// Owner tags every id the client creates. Zero is reserved.
	Owner uint32 `yaml:"owner"`

	// AnimationScale stretches every animation; 2 plays at half speed.
	AnimationScale float64 `yaml:"animation_scale"`
	Debug          bool    `yaml:"debug"`

	// ZeroThreshold is the distance under which springs count as at rest.
	ZeroThreshold float64 `yaml:"zero_threshold"`

	// Curves are named presets resolved by Curve.
	Curves map[string]TimingCurve `yaml:"curves"`

	// Colors are named "#rrggbb" or "#rrggbbaa" presets resolved by Color.
	Colors map[string]string `yaml:"colors"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig configures the mqttlink transport.
type MQTTConfig struct {
	URL      string `yaml:"url"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Topic prefix; transactions go to <prefix>/tx and callbacks for an
	// owner to <prefix>/cb/<owner>.
	Prefix  string        `yaml:"prefix"`
	QoS     byte          `yaml:"qos"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Owner:          1,
		AnimationScale: 1,
		ZeroThreshold:  DefaultZeroThreshold,
		MQTT: MQTTConfig{
			URL:      "tcp://localhost:1883",
			ClientID: "sway",
			Prefix:   "sway",
			QoS:      1,
			Timeout:  5 * time.Second,
		},
	}
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML config data on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and every curve preset.
func (c *Config) Validate() error {
	if c.Owner == 0 {
		return fmt.Errorf("config: owner 0 is reserved")
	}
	if c.AnimationScale <= 0 {
		return fmt.Errorf("config: animation_scale must be positive, got %v", c.AnimationScale)
	}
	if c.ZeroThreshold < 0 {
		return fmt.Errorf("config: zero_threshold must not be negative, got %v", c.ZeroThreshold)
	}
	if c.MQTT.QoS > 2 {
		return fmt.Errorf("config: mqtt qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	for name, curve := range c.Curves {
		if err := curve.Validate(); err != nil {
			return fmt.Errorf("config: curve %q: %w", name, err)
		}
	}
	for name, hex := range c.Colors {
		if _, err := ParseHexColor(hex); err != nil {
			return fmt.Errorf("config: color %q: %w", name, err)
		}
	}
	return nil
}

// Color returns the color preset called name.
func (c *Config) Color(name string) (Color, bool) {
	hex, ok := c.Colors[name]
	if !ok {
		return Color{}, false
	}
	col, err := ParseHexColor(hex)
	return col, err == nil
}

// Curve returns the preset called name. Names without a preset resolve to
// a registered easing, and to false if there is none.
func (c *Config) Curve(name string) (TimingCurve, bool) {
	if curve, ok := c.Curves[name]; ok {
		return curve, true
	}
	if HasEase(name) {
		return EaseCurve(name), true
	}
	return TimingCurve{}, false
}

// UnmarshalYAML reads a curve kind by name ("interpolating", "spring",
// "interpolating-spring").
func (k *CurveKind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	for _, kind := range []CurveKind{CurveInterpolating, CurveSpring, CurveInterpolatingSpring} {
		if kind.String() == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("curve kind %q: %w", s, ErrInvalidCurve)
}
