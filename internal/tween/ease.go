package tween

import "math"

// Ease maps linear progress in [0,1] to eased progress. Ease(1) must be 1.
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

func InQuad(t float64) float64 { return t * t }

func OutQuad(t float64) float64 { return t * (2 - t) }

func InOutSine(t float64) float64 { return -(math.Cos(math.Pi*t) - 1) / 2 }

var builtin = map[string]Ease{
	"linear":      Linear,
	"in_quad":     InQuad,
	"out_quad":    OutQuad,
	"in_out_sine": InOutSine,
}

// Builtin looks up one of the compiled-in curves by name.
func Builtin(name string) (Ease, bool) {
	e, ok := builtin[name]
	return e, ok
}
