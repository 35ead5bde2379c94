package ports

// Contract for producing new tracking numbers.
type TrackingNumberGenerator interface {
	NewTrackingNumber() (string, error)
}
