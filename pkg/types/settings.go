// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "encoding/json"

// SettingType describes how a setting's value is encoded.
type SettingType string

const (
	SettingString SettingType = "string"
	SettingNumber SettingType = "number"
	SettingList   SettingType = "list"
)

// Setting is one record of user-config.json. The web UI renders each record
// as a form field and posts the same shape back.
type Setting struct {
	// ID is the HTML element id of the form field.
	ID string `json:"id,omitempty"`

	// Name is the human-readable label.
	Name string `json:"name,omitempty"`

	// ConfigName is the key the application reads (e.g. "PROCESSED_FILES_DIRECTORY").
	ConfigName string `json:"config_name"`

	// Description is the help text shown under the field.
	Description string `json:"description,omitempty"`

	// Type selects the value encoding: string, number, or list.
	Type SettingType `json:"type"`

	// Value holds the raw JSON value: a string, a number, or a list of
	// {name, rate} objects.
	Value json.RawMessage `json:"value"`
}
