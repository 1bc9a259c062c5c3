package pool

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type prop struct {
	serial    int
	template  string
	active    bool
	pos       mgl64.Vec3
	rot       mgl64.Quat
	destroyed bool
}

func (p *prop) SetActive(active bool)      { p.active = active }
func (p *prop) SetPosition(pos mgl64.Vec3) { p.pos = pos }
func (p *prop) SetRotation(rot mgl64.Quat) { p.rot = rot }
func (p *prop) Destroyed() bool            { return p.destroyed }

type propFactory struct {
	name      string
	made      int
	destroyed int
	failAfter int // fail once made reaches this count; zero disables
}

func (f *propFactory) Template() string { return f.name }

func (f *propFactory) Instantiate() (*prop, error) {
	if f.failAfter > 0 && f.made >= f.failAfter {
		return nil, errors.New("prefab missing")
	}
	f.made++
	return &prop{serial: f.made, template: f.name, active: true}, nil
}

func (f *propFactory) Destroy(p *prop) {
	f.destroyed++
	p.destroyed = true
}

func (p *prop) String() string { return fmt.Sprintf("%s#%d", p.template, p.serial) }
