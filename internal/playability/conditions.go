package playability

import "strings"

// Condition is the provider weather condition attached to a slot.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
}

const (
	freezingRainCode = 511
)

// Sleet and mixed precipitation. All fall inside the 6xx snow group but are
// listed so the ice check reads the same as the provider's code table.
var sleetCodes = map[int]bool{
	611: true, // sleet
	612: true, // light shower sleet
	613: true, // shower sleet
	615: true, // light rain and snow
	616: true, // rain and snow
}

func (c Condition) text() string {
	return strings.ToLower(c.Main + " " + c.Description)
}

// IsThunder reports a 2xx condition or a thunder description.
func (c Condition) IsThunder() bool {
	if c.ID >= 200 && c.ID < 300 {
		return true
	}
	return strings.Contains(c.text(), "thunder")
}

// IsSnowIce reports snow, sleet, freezing rain or a matching description.
func (c Condition) IsSnowIce() bool {
	if c.ID >= 600 && c.ID < 700 {
		return true
	}
	if c.ID == freezingRainCode || sleetCodes[c.ID] {
		return true
	}
	t := c.text()
	return strings.Contains(t, "snow") ||
		strings.Contains(t, "sleet") ||
		strings.Contains(t, "freezing")
}
