package model

type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// Alert is a system-wide broadcast from an admin. Append-only.
//
// swagger:model Alert
type Alert struct {
	BaseModel
	Title    string        `gorm:"size:255;not null" json:"title"`
	Message  string        `gorm:"type:text;not null" json:"message"`
	Severity AlertSeverity `gorm:"size:10;default:'low'" json:"severity"`
}

func (Alert) TableName() string {
	return "alerts"
}
