package domain

// Cell is a row/column pair within one zone section.
type Cell struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type OccupancyTier string

const (
	TierEmpty    OccupancyTier = "empty"
	TierOccupied OccupancyTier = "occupied"
	TierCrowded  OccupancyTier = "crowded"
)

// crowdedThreshold is the record count at which a cell or region is shown as crowded.
const crowdedThreshold = 4

func TierFor(count int) OccupancyTier {
	switch {
	case count <= 0:
		return TierEmpty
	case count < crowdedThreshold:
		return TierOccupied
	default:
		return TierCrowded
	}
}
