package models

// ScreenOrientation is the orientation a screen asks its host to lock while it is shown.
type ScreenOrientation string

const (
	OrientationPortrait  ScreenOrientation = "portrait"
	OrientationLandscape ScreenOrientation = "landscape"
)
