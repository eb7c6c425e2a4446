package data

import "database/sql/driver"

// EscalationTarget decides where a lead goes when its queue has nobody available
type EscalationTarget string

const (
	// EscalateToRoulette retries the lead in the roulette queue
	EscalateToRoulette EscalationTarget = "roulette"
	// EscalateToNextQueue retries the lead in the next matching queue by priority
	EscalateToNextQueue EscalationTarget = "nextQueue"
	// EscalateToNone holds the lead
	EscalateToNone EscalationTarget = "none"
)

// IsKnown returns true for one of the declared escalation targets
func (target EscalationTarget) IsKnown() bool {
	return target == EscalateToRoulette || target == EscalateToNextQueue || target == EscalateToNone
}

// CheckinWindow governs time and presence based availability of a queue's members
type CheckinWindow struct {
	Enabled bool `json:"enabled"`
	// DaysOfWeek accepts 0-6 (0 is Sunday) or day names
	DaysOfWeek     []string `json:"daysOfWeek"`
	StartTime      string   `json:"startTime"`
	EndTime        string   `json:"endTime"`
	RequireCheckin bool     `json:"requireCheckin"`
	QREnabled      bool     `json:"qrEnabled"`
}

// Scan reads the window from a JSON column
func (window *CheckinWindow) Scan(value interface{}) error {
	*window = CheckinWindow{}
	return scanJSONColumn(value, window)
}

// Value writes the window as a JSON column
func (window CheckinWindow) Value() (driver.Value, error) {
	return jsonColumnValue(window)
}

// AdvancedConfig holds a queue's optional distribution behaviour
type AdvancedConfig struct {
	RedistributionActive            bool             `json:"redistributionActive"`
	PreservePositionWhenUnavailable bool             `json:"preservePositionWhenUnavailable"`
	EscalationTarget                EscalationTarget `json:"escalationTarget"`
	AttendanceTimeoutMinutes        uint             `json:"attendanceTimeoutMinutes,omitempty"`
	RotationPauseMinutes            uint             `json:"rotationPauseMinutes,omitempty"`
	BusinessHoursStart              string           `json:"businessHoursStart,omitempty"`
	BusinessHoursEnd                string           `json:"businessHoursEnd,omitempty"`
}

// Scan reads the config from a JSON column
func (advanced *AdvancedConfig) Scan(value interface{}) error {
	*advanced = AdvancedConfig{}
	return scanJSONColumn(value, advanced)
}

// Value writes the config as a JSON column
func (advanced AdvancedConfig) Value() (driver.Value, error) {
	return jsonColumnValue(advanced)
}
