// Package heatpump models heat-pump efficiency as a quadratic COP curve over
// outdoor temperature and selects the operating mode from outdoor thresholds.
package heatpump

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

// ErrInsufficientData is returned when fewer than 3 distinct measurement
// points are supplied; a quadratic fit on fewer is degenerate and unsafe to
// act on, so this is fatal at model-build time.
var ErrInsufficientData = errors.New("heatpump: need at least 3 distinct COP points for a quadratic fit")

// COPPoint is one discrete manufacturer measurement.
type COPPoint struct {
	OutdoorTempC float64
	MaxCOP       float64
}

// Curve is a fitted quadratic c0 + c1*t + c2*t^2.
type Curve struct {
	coeffs [3]float64
}

// FitCurve performs a least-squares degree-2 fit over the measurement points.
func FitCurve(points []COPPoint) (Curve, error) {
	distinct := make(map[float64]struct{}, len(points))
	for _, p := range points {
		distinct[p.OutdoorTempC] = struct{}{}
	}
	if len(distinct) < 3 {
		return Curve{}, fmt.Errorf("%w: got %d", ErrInsufficientData, len(distinct))
	}

	n := len(points)
	a := mat.NewDense(n, 3, nil)
	b := mat.NewVecDense(n, nil)
	for i, p := range points {
		a.Set(i, 0, 1)
		a.Set(i, 1, p.OutdoorTempC)
		a.Set(i, 2, p.OutdoorTempC*p.OutdoorTempC)
		b.SetVec(i, p.MaxCOP)
	}

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.Dense
	if err := qr.SolveTo(&sol, false, b); err != nil {
		return Curve{}, fmt.Errorf("heatpump: fit failed: %w", err)
	}
	return Curve{coeffs: [3]float64{sol.At(0, 0), sol.At(1, 0), sol.At(2, 0)}}, nil
}

// Evaluate returns the fitted COP at the given outdoor temperature.
func (c Curve) Evaluate(outdoorTempC float64) float64 {
	return c.coeffs[0] + c.coeffs[1]*outdoorTempC + c.coeffs[2]*outdoorTempC*outdoorTempC
}

// Model holds one fitted curve per mode. Fit once at startup, immutable
// afterwards.
type Model struct {
	heating Curve
	cooling Curve
}

// NewModel fits both curves from their measurement tables.
func NewModel(heating, cooling []COPPoint) (*Model, error) {
	h, err := FitCurve(heating)
	if err != nil {
		return nil, fmt.Errorf("heating curve: %w", err)
	}
	c, err := FitCurve(cooling)
	if err != nil {
		return nil, fmt.Errorf("cooling curve: %w", err)
	}
	return &Model{heating: h, cooling: c}, nil
}

// COP evaluates the curve for the given mode. Mode off is defined as 0.0 and
// never touches the regression.
func (m *Model) COP(mode model.HvacMode, outdoorTempC float64) float64 {
	switch mode {
	case model.HvacHeat:
		return m.heating.Evaluate(outdoorTempC)
	case model.HvacCool:
		return m.cooling.Evaluate(outdoorTempC)
	default:
		return 0.0
	}
}
