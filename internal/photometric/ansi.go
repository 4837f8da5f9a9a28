package photometric

// Point is a CIE 1931 (x, y) chromaticity.
type Point struct {
	X, Y float64
}

// Bin is one ANSI C78.377-2015 nominal CCT quadrangle.
type Bin struct {
	CCT     int
	Center  Point
	Corners [4]Point
}

// ANSIBins lists the 2700K–6500K quadrangles, warmest first.
var ANSIBins = []Bin{
	{2700, Point{0.4578, 0.4101}, [4]Point{{0.4813, 0.4319}, {0.4562, 0.4260}, {0.4373, 0.3893}, {0.4593, 0.3944}}},
	{3000, Point{0.4339, 0.4033}, [4]Point{{0.4562, 0.4260}, {0.4303, 0.4173}, {0.4150, 0.3821}, {0.4373, 0.3893}}},
	{3500, Point{0.4078, 0.3930}, [4]Point{{0.4303, 0.4173}, {0.4003, 0.4035}, {0.3895, 0.3709}, {0.4150, 0.3821}}},
	{4000, Point{0.3818, 0.3797}, [4]Point{{0.4003, 0.4035}, {0.3737, 0.3880}, {0.3671, 0.3583}, {0.3895, 0.3709}}},
	{4500, Point{0.3613, 0.3670}, [4]Point{{0.3737, 0.3882}, {0.3550, 0.3754}, {0.3514, 0.3482}, {0.3672, 0.3585}}},
	{5000, Point{0.3446, 0.3551}, [4]Point{{0.3550, 0.3753}, {0.3375, 0.3619}, {0.3366, 0.3373}, {0.3515, 0.3481}}},
	{5700, Point{0.3287, 0.3425}, [4]Point{{0.3375, 0.3619}, {0.3205, 0.3476}, {0.3221, 0.3256}, {0.3366, 0.3374}}},
	{6500, Point{0.3123, 0.3283}, [4]Point{{0.3205, 0.3477}, {0.3026, 0.3311}, {0.3067, 0.3119}, {0.3221, 0.3255}}},
}

// ClassifyANSI returns the quadrangle containing (x, y).
func ClassifyANSI(x, y float64) (Bin, bool) {
	p := Point{x, y}
	for _, b := range ANSIBins {
		if b.contains(p) {
			return b, true
		}
	}
	return Bin{}, false
}

// contains is an even-odd ray casting test.
func (b Bin) contains(p Point) bool {
	in := false
	c := b.Corners
	for i, j := 0, len(c)-1; i < len(c); j, i = i, i+1 {
		if (c[i].Y > p.Y) != (c[j].Y > p.Y) &&
			p.X < (c[j].X-c[i].X)*(p.Y-c[i].Y)/(c[j].Y-c[i].Y)+c[i].X {
			in = !in
		}
	}
	return in
}

// EstimateCCT approximates correlated colour temperature with McCamy's
// cubic. It is accurate to a few kelvin between 2000K and 12500K.
func EstimateCCT(x, y float64) float64 {
	n := (x - 0.3320) / (0.1858 - y)
	return 449*n*n*n + 3525*n*n + 6823.3*n + 5520.33
}
