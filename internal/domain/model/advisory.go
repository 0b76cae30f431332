package model

import "time"

type AdvisoryKind string

const (
	AdvisoryKindCrop      AdvisoryKind = "crop"
	AdvisoryKindFragility AdvisoryKind = "fragility"
)

// CropAdvice is one advice item for a single crop.
type CropAdvice struct {
	Crop   string `json:"crop"`
	Stage  string `json:"stage,omitempty"`
	Advice string `json:"advice"`
}

// FragilitySection is one regional risk heading with a severity grade.
type FragilitySection struct {
	Title    string `json:"title"`
	Summary  string `json:"summary"`
	Severity string `json:"severity"` // low | moderate | high
}

// AdviceResult is the tagged outcome of a model call. Either Structured is
// true and Header plus Items/Sections are populated, or the raw text sits
// in Raw and callers render it as-is. Parse failures degrade, they never
// error.
type AdviceResult struct {
	Structured bool               `json:"-"`
	Header     string             `json:"header,omitempty"`
	Items      []CropAdvice       `json:"items,omitempty"`
	Sections   []FragilitySection `json:"sections,omitempty"`
	Raw        string             `json:"advice,omitempty"`
}

// Advisory is the denormalized history record kept per farmer.
type Advisory struct {
	ID        string
	FarmerUID string
	Kind      AdvisoryKind
	Result    AdviceResult
	CreatedAt time.Time
}
