package interp

import (
	"go.ngs.io/regrid/internal/domain"
)

// Bitmap wraps a kernel for fields with missing samples: when any neighbour
// is missing, the nearest present neighbour is used instead.
type Bitmap struct {
	inner Interpolator
	mv    float64
}

// NewBitmap wraps inner with the missing-sample fallback.
func NewBitmap(inner Interpolator, cfg Config) *Bitmap {
	return &Bitmap{inner: inner, mv: cfg.MissingValue}
}

func (b *Bitmap) Neighbours() int { return b.inner.Neighbours() }

func (b *Bitmap) Value(where domain.Point, nbrs []domain.FieldPoint) (float64, error) {
	if domain.AnyMissing(nbrs, b.mv) {
		return nearestPresent(where, nbrs, b.mv), nil
	}
	return b.inner.Value(where, nbrs)
}

// Weights puts the whole weight on the nearest present neighbour when a
// sample is missing, and all-zero weights when every sample is.
func (b *Bitmap) Weights(where domain.Point, nbrs []domain.FieldPoint) ([]float64, error) {
	if domain.AnyMissing(nbrs, b.mv) {
		w := make([]float64, len(nbrs))
		keep := func(n domain.FieldPoint) bool { return !n.IsMissing(b.mv) }
		if i := nearestIndex(where, nbrs, keep); i >= 0 {
			w[i] = 1
		}
		return w, nil
	}
	return b.inner.Weights(where, nbrs)
}

func (b *Bitmap) String() string {
	return b.inner.String() + "_bitmap"
}
