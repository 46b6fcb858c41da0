package model

import "encoding/json"

// SegmentKind discriminates the polymorphic day segments of an itinerary.
type SegmentKind int

const (
	SegmentUnknown SegmentKind = iota
	SegmentStay
	SegmentActivity
	SegmentTransfer
)

// Itinerary is the structured travel document the pipelines read. It is
// external input: every field is optional and absent values decode to zero.
type Itinerary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Overview Overview `json:"overview"`
	Days     []Day    `json:"days"`
}

type Overview struct {
	Countries []OverviewCountry `json:"countries"`
	Summary   string            `json:"summary"`
}

type OverviewCountry struct {
	Country string `json:"country"`
}

type Day struct {
	DayNumber int       `json:"dayNumber"`
	Location  string    `json:"location"`
	Segments  []Segment `json:"segments"`
}

// Segment is a tagged union on the blockType discriminator. Fields only
// meaningful for one kind stay zero for the others.
type Segment struct {
	BlockType string `json:"blockType"`

	// stay
	AccommodationName string      `json:"accommodationNameItrvl"`
	Accommodation     interface{} `json:"accommodation"` // bare id or {id: ...}
	Location          string      `json:"location"`
	Country           string      `json:"country"`

	// activity
	Title string `json:"titleItrvl"`
}

// Kind maps blockType onto the segment enum. Unknown block types map to
// SegmentUnknown and are skipped by consumers rather than rejected.
func (s Segment) Kind() SegmentKind {
	switch s.BlockType {
	case "stay":
		return SegmentStay
	case "activity":
		return SegmentActivity
	case "transfer":
		return SegmentTransfer
	default:
		return SegmentUnknown
	}
}

// DecodeItinerary converts a raw store document into an Itinerary.
func DecodeItinerary(doc map[string]interface{}) (*Itinerary, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var it Itinerary
	if err := json.Unmarshal(raw, &it); err != nil {
		return nil, err
	}
	return &it, nil
}
