package models

// GuardianRequest creates or replaces the user's guardian contact.
type GuardianRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`

	// Message overrides the default arrival SMS text when set.
	Message string `json:"message,omitempty"`
}

// Guardian is the user's guardian contact.
type Guardian struct {
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}
