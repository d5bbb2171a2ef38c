package saliency

// ToPoints returns the coordinates of every cell of a fixation map whose value
// is strictly positive, in row-major order. An all-zero map yields an empty,
// non-nil slice.
func ToPoints(fixationMap Map) []Point {
	rows, cols := fixationMap.Dims()
	points := make([]Point, 0)
	for r := range rows {
		for c := range cols {
			if fixationMap.At(r, c) > 0 {
				points = append(points, Point{Row: r, Col: c})
			}
		}
	}
	return points
}
