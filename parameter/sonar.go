package parameter

// Sonar Scan Defaults
const (
	SonarDefaultRayCount     = 72
	SonarDefaultFanAngle     = 360.0 // degrees
	SonarDefaultMaxRange     = 15.0  // world units
	SonarDefaultSpeedOfSound = 343.0 // units per second

	SonarMinRayCount = 2
	SonarMaxFanAngle = 360.0
)
