package models

import (
	"encoding/json"
	"time"
)

// JSONMap is a type alias for JSONB columns
type JSONMap map[string]interface{}

// User is a stored user record, keyed by the identity provider's subject.
// Created by upsert on first sign-in; hard-deleted only by explicit account
// deletion, which cascades to projects and conversations.
type User struct {
	ID           string    `json:"id" db:"id"`
	ExternalID   string    `json:"external_id" db:"external_id"`
	Email        string    `json:"email" db:"email"`
	DisplayName  string    `json:"display_name" db:"display_name"`
	AvatarURL    string    `json:"avatar_url" db:"avatar_url"`
	Settings     JSONMap   `json:"settings" db:"settings"`
	LastActiveAt time.Time `json:"last_active_at" db:"last_active_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ProviderModel is a provider/model pair for unambiguous model selection.
type ProviderModel struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ModelSettings is the "models" namespace in user settings.
type ModelSettings struct {
	Default   *ProviderModel  `json:"default"`
	Favorites []ProviderModel `json:"favorites"`
}

// GetModelSettings extracts the models namespace from settings with type safety.
func (u *User) GetModelSettings() (*ModelSettings, error) {
	if u.Settings == nil {
		return &ModelSettings{Favorites: []ProviderModel{}}, nil
	}

	raw, ok := u.Settings["models"]
	if !ok {
		return &ModelSettings{Favorites: []ProviderModel{}}, nil
	}

	// Re-marshal to ensure type safety
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var ms ModelSettings
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, err
	}

	return &ms, nil
}

// SetModelSettings sets the models namespace in settings.
func (u *User) SetModelSettings(ms *ModelSettings) error {
	if u.Settings == nil {
		u.Settings = JSONMap{}
	}

	data, err := json.Marshal(ms)
	if err != nil {
		return err
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	u.Settings["models"] = m
	return nil
}
