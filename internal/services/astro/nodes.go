package astro

const (
	nodeRefLongitude = 125.04
	nodeDailyMotion  = -0.0529539
)

// NorthNode is the mean ascending lunar node at jd.
func NorthNode(jd float64) float64 {
	return Normalize(nodeRefLongitude + nodeDailyMotion*DaysSinceJ2000(jd) + 360)
}

// SouthNode is always opposite the north node.
func SouthNode(jd float64) float64 {
	return Normalize(NorthNode(jd) + 180)
}

// MeanNodes returns both nodes for jd.
func MeanNodes(jd float64) (north, south float64) {
	north = NorthNode(jd)
	return north, Normalize(north + 180)
}
