package dto

// Fields are pointers so a missing key can be told apart from an empty string.
type CreateDeliveryRequest struct {
	Status   *string `json:"status"`
	Location *string `json:"location"`
}

// Exactly one of TrackingNumber or Message is set.
type CreateDeliveryResponse struct {
	TrackingNumber string `json:"trackingNumber,omitempty"`
	Message        string `json:"message,omitempty"`
}

type DeliveryResponse struct {
	TrackingNumber string `json:"trackingNumber"`
	Status         string `json:"status"`
	Location       string `json:"location"`
}
