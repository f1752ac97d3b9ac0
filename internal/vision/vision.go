package vision

import (
	"context"
	"errors"
	"io"
)

// RegionPrompt is the shared prompt used by all vision adapters.
const RegionPrompt = `This photo shows one section of a laboratory fridge or freezer.
Identify each distinct storage area you can see (shelf, drawer, rack, box or tray).
For each area give a short name and its bounding box in pixel coordinates of the
photo: x and y of the top-left corner, then width and height.
Respond in plain text, one area per line, format: name | x | y | width | height`

// ErrEmptyImage is returned when an adapter is given no image bytes.
var ErrEmptyImage = errors.New("image is empty")

// RegionSuggester proposes storage regions for a layout photo.
type RegionSuggester interface {
	SuggestRegions(ctx context.Context, r io.Reader, mimeType string) (*SuggestionResult, error)
}

type SuggestionResult struct {
	Regions     []SuggestedRegion
	RawResponse string
}

// SuggestedRegion is a candidate rectangle. Nothing is stored until the
// operator accepts it as a region.
type SuggestedRegion struct {
	Name   string `json:"name"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ReadImage reads all of r and rejects empty input.
func ReadImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}
