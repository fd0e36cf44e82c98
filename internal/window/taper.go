package window

import "math"

// Taper is the per-position weight applied to every window before it is
// normalized. One taper is built per run and shared read-only.
type Taper []float64

// Hann is the symmetric sin² taper, zero at both ends.
func Hann(size int) Taper {
	t := make(Taper, size)
	if size == 1 {
		t[0] = 1
		return t
	}
	for i := range t {
		w := math.Sin(math.Pi * float64(i) / (float64(size) - 1))
		t[i] = w * w
	}
	return t
}

// PeriodicHann is sin²(πi/L). Two copies offset by half a window sum to
// exactly one, so overlap-add reproduces a perfectly matched signal.
func PeriodicHann(size int) Taper {
	t := make(Taper, size)
	for i := range t {
		w := math.Sin(math.Pi * float64(i) / float64(size))
		t[i] = w * w
	}
	return t
}

func Rectangular(size int) Taper {
	t := make(Taper, size)
	for i := range t {
		t[i] = 1
	}
	return t
}

type TaperType string

const (
	TaperTypeHann         TaperType = "HANN"
	TaperTypePeriodicHann TaperType = "PERIODIC_HANN"
	TaperTypeRectangular  TaperType = "RECTANGULAR"
)

func TaperFor(t TaperType, size int) (Taper, error) {
	if size < 1 {
		return nil, ErrWindowSize
	}
	switch t {
	case TaperTypeHann:
		return Hann(size), nil
	case TaperTypePeriodicHann:
		return PeriodicHann(size), nil
	case TaperTypeRectangular:
		return Rectangular(size), nil
	default:
		return nil, ErrUnknownTaper
	}
}
