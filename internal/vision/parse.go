package vision

import (
	"strconv"
	"strings"
)

// ParseLine parses a single "name | x | y | width | height" line. It returns
// nil for preamble, malformed lines and boxes with no area.
func ParseLine(line string) *SuggestedRegion {
	line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•"))
	if line == "" || !strings.Contains(line, "|") {
		return nil
	}

	parts := strings.Split(line, "|")
	if len(parts) < 5 {
		return nil
	}
	name := strings.TrimSpace(parts[0])
	if name == "" {
		return nil
	}

	var nums [4]int
	for i := range nums {
		n, err := strconv.ParseFloat(strings.TrimSpace(parts[i+1]), 64)
		if err != nil {
			return nil
		}
		nums[i] = int(n)
	}
	if nums[0] < 0 || nums[1] < 0 || nums[2] <= 0 || nums[3] <= 0 {
		return nil
	}
	return &SuggestedRegion{Name: name, X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
}

// ParseResponse parses a model response, one region per line.
func ParseResponse(raw string) []SuggestedRegion {
	regions := make([]SuggestedRegion, 0)
	for _, line := range strings.Split(raw, "\n") {
		if r := ParseLine(line); r != nil {
			regions = append(regions, *r)
		}
	}
	return regions
}
