package data

import (
	"fmt"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zencore/toolkit/internal/audio"
	"github.com/zencore/toolkit/internal/particle"
	"github.com/zencore/toolkit/internal/scene"
	"gopkg.in/yaml.v3"
)

// ParticleMember is one template of a particle family.
type ParticleMember struct {
	Template string        `yaml:"template"`
	Duration time.Duration `yaml:"duration"`
	Lifetime time.Duration `yaml:"lifetime"`
	Loop     bool          `yaml:"loop"`
}

// ParticleEntry is a named particle family.
type ParticleEntry struct {
	Name    string           `yaml:"name"`
	Count   int              `yaml:"count"`
	Members []ParticleMember `yaml:"members"`
}

type ClipEntry struct {
	Frequency float64       `yaml:"frequency"`
	Duration  time.Duration `yaml:"duration"`
}

// SoundEntry defines a sound. Volume and pitch default to 1.
type SoundEntry struct {
	Name   string      `yaml:"name"`
	Volume *float64    `yaml:"volume"`
	Pitch  *float64    `yaml:"pitch"`
	Loop   bool        `yaml:"loop"`
	Clips  []ClipEntry `yaml:"clips"`
}

// TemplateEntry is a scene template with its pool size.
type TemplateEntry struct {
	Template string     `yaml:"template"`
	Initial  int        `yaml:"initial"`
	Scale    [3]float64 `yaml:"scale"`
}

type PopupEntries struct {
	Text TemplateEntry `yaml:"text"`
	Icon TemplateEntry `yaml:"icon"`
}

// Catalog is the content loaded from catalog.yaml.
type Catalog struct {
	Particles []ParticleEntry `yaml:"particles"`
	Sounds    []SoundEntry    `yaml:"sounds"`
	Popups    PopupEntries    `yaml:"popups"`
	Props     []TemplateEntry `yaml:"props"`
}

// LoadCatalog loads and validates catalog.yaml.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := yaml.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return c, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool)
	for i, p := range c.Particles {
		if p.Name == "" {
			return fmt.Errorf("particles[%d]: missing name", i)
		}
		if seen["particle/"+p.Name] {
			return fmt.Errorf("particles: duplicate %q", p.Name)
		}
		seen["particle/"+p.Name] = true
		if len(p.Members) == 0 {
			return fmt.Errorf("particles %q: no members", p.Name)
		}
		for j, m := range p.Members {
			if m.Template == "" {
				return fmt.Errorf("particles %q member %d: missing template", p.Name, j)
			}
		}
	}
	for i, s := range c.Sounds {
		if s.Name == "" {
			return fmt.Errorf("sounds[%d]: missing name", i)
		}
		if seen["sound/"+s.Name] {
			return fmt.Errorf("sounds: duplicate %q", s.Name)
		}
		seen["sound/"+s.Name] = true
		if len(s.Clips) == 0 {
			return fmt.Errorf("sounds %q: no clips", s.Name)
		}
		for j, cl := range s.Clips {
			if cl.Frequency <= 0 || cl.Duration <= 0 {
				return fmt.Errorf("sounds %q clip %d: frequency and duration must be positive", s.Name, j)
			}
		}
	}
	for i, p := range c.Props {
		if p.Template == "" {
			return fmt.Errorf("props[%d]: missing template", i)
		}
	}
	return nil
}

// ParticleDefinitions converts the particle section for the effect manager.
func (c *Catalog) ParticleDefinitions() []particle.Definition {
	defs := make([]particle.Definition, 0, len(c.Particles))
	for _, p := range c.Particles {
		d := particle.Definition{Name: p.Name, Count: p.Count}
		for _, m := range p.Members {
			d.Members = append(d.Members, particle.Member{
				Template: m.Template,
				Duration: m.Duration,
				Lifetime: m.Lifetime,
				Loop:     m.Loop,
			})
		}
		defs = append(defs, d)
	}
	return defs
}

// SoundDefinitions converts the sound section for the audio manager.
func (c *Catalog) SoundDefinitions() []audio.Sound {
	sounds := make([]audio.Sound, 0, len(c.Sounds))
	for _, s := range c.Sounds {
		snd := audio.Sound{Name: s.Name, Volume: 1, Pitch: 1, Loop: s.Loop}
		if s.Volume != nil {
			snd.Volume = *s.Volume
		}
		if s.Pitch != nil {
			snd.Pitch = *s.Pitch
		}
		for _, cl := range s.Clips {
			snd.Clips = append(snd.Clips, audio.Clip{Frequency: cl.Frequency, Duration: cl.Duration})
		}
		sounds = append(sounds, snd)
	}
	return sounds
}

// Prototype returns the scene prototype for a template entry.
func (t TemplateEntry) Prototype() scene.Prototype {
	p := scene.DefaultPrototype()
	if t.Scale != [3]float64{} {
		p.Scale = mgl64.Vec3(t.Scale)
	}
	return p
}
