package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Preset describes one reproducible seeding profile. Presets ship as YAML so
// demo environments can be tuned without recompiling.
type Preset struct {
	Name            string  `yaml:"name"`
	Readers         int     `yaml:"readers"`
	Authors         int     `yaml:"authors"`
	PostsPerAuthor  int     `yaml:"posts_per_author"`
	CommentsPerPost int     `yaml:"comments_per_post"`
	ReplyRate       float64 `yaml:"reply_rate"`
	LikeRate        float64 `yaml:"like_rate"`
	SaveRate        float64 `yaml:"save_rate"`
}

// Validate rejects presets that would generate nothing or nonsense.
func (p *Preset) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("preset name is required")
	}
	if p.Authors <= 0 {
		return fmt.Errorf("preset %q: authors must be positive", p.Name)
	}
	if p.Readers < 0 || p.PostsPerAuthor < 0 || p.CommentsPerPost < 0 {
		return fmt.Errorf("preset %q: counts must not be negative", p.Name)
	}
	for _, rate := range []float64{p.ReplyRate, p.LikeRate, p.SaveRate} {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("preset %q: rates must be within [0, 1]", p.Name)
		}
	}
	return nil
}

// builtInPresets are parsed once at startup; a parse failure here is a
// programming error.
const builtInPresetYAML = `
- name: minimal
  readers: 5
  authors: 2
  posts_per_author: 3
  comments_per_post: 2
  reply_rate: 0.3
  like_rate: 0.4
  save_rate: 0.2
- name: standard
  readers: 40
  authors: 8
  posts_per_author: 10
  comments_per_post: 5
  reply_rate: 0.35
  like_rate: 0.5
  save_rate: 0.25
- name: busy
  readers: 200
  authors: 25
  posts_per_author: 20
  comments_per_post: 12
  reply_rate: 0.4
  like_rate: 0.6
  save_rate: 0.3
`

// Presets holds the built-in profiles keyed by name.
var Presets = mustParsePresets([]byte(builtInPresetYAML))

func mustParsePresets(data []byte) map[string]Preset {
	parsed, err := ParsePresets(data)
	if err != nil {
		panic(err)
	}
	return parsed
}

// ParsePresets decodes a YAML list of presets and validates each one.
func ParsePresets(data []byte) (map[string]Preset, error) {
	var list []Preset
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}

	presets := make(map[string]Preset, len(list))
	for i := range list {
		p := list[i]
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := presets[p.Name]; dup {
			return nil, fmt.Errorf("duplicate preset %q", p.Name)
		}
		presets[p.Name] = p
	}
	return presets, nil
}

// LoadPresetFile reads extra presets from a YAML file, overlaying the
// built-in set. A file preset with a built-in name wins.
func LoadPresetFile(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path) // #nosec G304: operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read preset file: %w", err)
	}
	fromFile, err := ParsePresets(data)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]Preset, len(Presets)+len(fromFile))
	for name, p := range Presets {
		merged[name] = p
	}
	for name, p := range fromFile {
		merged[name] = p
	}
	return merged, nil
}
