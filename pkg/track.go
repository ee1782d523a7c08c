package reco

// Track is a straight line x(z) = ConstX + SlopeX*z, y(z) = ConstY + SlopeY*z.
type Track struct {
	ConstX float64
	SlopeX float64
	ConstY float64
	SlopeY float64

	CovCXCX float64
	CovCXSX float64
	CovSXSX float64
	CovCYCY float64
	CovCYSY float64
	CovSYSY float64

	// sum of squared residuals at the minimum
	Res2 float64

	NX    int
	NU    int
	NV    int
	IsFit bool
}

func (t *Track) CountHit(category PlaneCategory) {
	switch category {
	case PlaneX:
		t.NX++
	case PlaneU:
		t.NU++
	case PlaneV:
		t.NV++
	}
}

func (t Track) XAt(z float64) float64 {
	return t.ConstX + t.SlopeX*z
}

func (t Track) YAt(z float64) float64 {
	return t.ConstY + t.SlopeY*z
}
