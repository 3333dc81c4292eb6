package changecode

// Color is the display color of a quarter in a chart.
type Color string

const (
	Green  Color = "green"
	Orange Color = "orange"
	Red    Color = "red"
	// Blue marks the first quarter, which has no predecessor to compare with.
	Blue Color = "blue"
)

// Colors derives display colors for series using the default threshold.
func Colors(series []float64) []Color {
	return defaultClassifier.Colors(series)
}

// Colors derives display colors for series. Unlike Classify, index 0 gets the
// neutral Blue instead of the LargeDown sentinel.
func (c Classifier) Colors(series []float64) []Color {
	codes := c.Classify(series)
	colors := make([]Color, len(codes))
	for i, code := range codes {
		if i == 0 {
			colors[i] = Blue
			continue
		}
		colors[i] = code.Color()
	}
	return colors
}
