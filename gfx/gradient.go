package gfx

// ExtendMode controls how a gradient behaves outside its defined stop
// range.
type ExtendMode uint32

const (
	ExtendModeClamp ExtendMode = iota
	ExtendModeRepeat
)

func (m ExtendMode) String() string {
	switch m {
	case ExtendModeClamp:
		return "Clamp"
	case ExtendModeRepeat:
		return "Repeat"
	default:
		return "Unknown"
	}
}

// ColorStopKey is the hashable identity of one gradient stop. Stop lists
// made of equal keys intern to the same gradient template.
type ColorStopKey struct {
	Offset float32
	Color  ColorKey
}

// GradientStop is a stop resolved for GPU consumption.
type GradientStop struct {
	Offset float32
	Color  ColorF
}

// ResolveStops converts stop keys into GPU-ready stops and returns the
// minimum alpha across all stops. A gradient whose minimum alpha is 1 can
// be treated as opaque by segment and blend decisions.
func ResolveStops(keys []ColorStopKey) ([]GradientStop, float32) {
	stops := make([]GradientStop, len(keys))
	minAlpha := float32(1)
	for i, k := range keys {
		c := k.Color.ToColorF()
		if c[3] < minAlpha {
			minAlpha = c[3]
		}
		stops[i] = GradientStop{Offset: k.Offset, Color: c}
	}
	return stops, minAlpha
}

// ReverseStops reverses a stop list in place, remapping each offset o to
// 1-o so the gradient reads the same from the opposite endpoint.
func ReverseStops(stops []GradientStop) {
	for i, j := 0, len(stops)-1; i < j; i, j = i+1, j-1 {
		stops[i], stops[j] = stops[j], stops[i]
	}
	for i := range stops {
		stops[i].Offset = 1 - stops[i].Offset
	}
}

// PrimitiveOpacity is the cheap conservative opacity classification used
// in primitive headers and segment decisions.
type PrimitiveOpacity struct {
	IsOpaque bool
}

func OpacityFromAlpha(alpha float32) PrimitiveOpacity {
	return PrimitiveOpacity{IsOpaque: alpha >= 1}
}
