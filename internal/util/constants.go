package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

// Progression rules.
const (
	MaxLevel     = 10
	XPPerLevel   = 1000
	XPMultiplier = 10
)

// Placement scoring. The placement exam mixes mcq and descriptive questions
// but is auto-scored from the mcq subset alone: a base of 10 points plus up
// to 80 proportional to mcq correctness. With no mcq questions the score
// defaults to a neutral 75.
const (
	PlacementBaseScore    = 10
	PlacementMCQWeight    = 80
	PlacementNeutralScore = 75
)

// StaffDefaultLevel is the initial level of non-citizen accounts.
const StaffDefaultLevel = 5

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const (
	MimeVideo       = "video/"
	MimeOctetStream = "application/octet-stream"
)

var AllowedVideoExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm"}
