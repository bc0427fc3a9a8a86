package models

const (
	ScreenModePlan  = "plan"
	ScreenModeImage = "image"
)

// ScreenDocument is the persisted screen configuration file.
type ScreenDocument struct {
	Screens  map[string]Screen `json:"screens"`
	GlobalAd GlobalAd          `json:"global_ad"`
}

type Screen struct {
	ID             int     `json:"id"`
	Mode           string  `json:"mode"`
	PlanID         *int64  `json:"plan_id"`
	ImagePath      *string `json:"image_path"`
	BackgroundPath *string `json:"background_path"`
	UpdatedAt      *string `json:"updated_at"`
}

type GlobalAd struct {
	Path *string `json:"path"`
	Type *string `json:"type"`
}
