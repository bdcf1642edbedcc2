package models

// ModelRegistration is the payload for POST /api/v1/models/register. The
// owning user is derived from the API key server-side.
type ModelRegistration struct {
	Name            string                 `json:"name"`
	ModelType       string                 `json:"model_type,omitempty"`
	ModelFamily     string                 `json:"model_family,omitempty"`
	ModelSize       int                    `json:"model_size"`
	Hosting         string                 `json:"hosting,omitempty"`
	Architecture    string                 `json:"architecture,omitempty"`
	PretrainingData string                 `json:"pretraining_data,omitempty"`
	PublishingDate  string                 `json:"publishing_date,omitempty"`
	Parameters      map[string]interface{} `json:"parameters"`
}

// RegisteredModel is a model record owned by the API key's user.
type RegisteredModel struct {
	ReadableID     string `json:"readable_id"`
	Name           string `json:"name"`
	ModelType      string `json:"model_type"`
	ModelFamily    string `json:"model_family"`
	ModelSize      int    `json:"model_size"`
	OrganizationID string `json:"organization_id,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
}
