package ops

import (
	"database/sql"
	"strings"

	"github.com/pagemark/pagemark/internal/db"
	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// GetSettingsInput contains parameters for the GetSettings operation.
// Either Token (dashboard) or WidgetKey (embed script) identifies the tenant.
type GetSettingsInput struct {
	Token     string
	WidgetKey string
}

// GetSettingsOutput contains the result of the GetSettings operation.
type GetSettingsOutput struct {
	Settings feedback.WidgetSettings `json:"settings"`
}

// GetSettings returns a tenant's widget appearance config, with defaults for
// tenants that never saved any.
func GetSettings(database *sql.DB, input GetSettingsInput) (*GetSettingsOutput, error) {
	client, err := ResolveClient(database, input.Token, input.WidgetKey)
	if err != nil {
		return nil, err
	}

	settings, err := db.GetWidgetSettings(database, client.ID)
	if err != nil {
		return nil, err
	}

	return &GetSettingsOutput{Settings: *settings}, nil
}

var validButtonPositions = map[string]bool{
	"bottom-right": true,
	"bottom-left":  true,
	"top-right":    true,
	"top-left":     true,
}

// UpdateSettingsInput contains parameters for the UpdateSettings operation.
type UpdateSettingsInput struct {
	Token    string
	Settings feedback.WidgetSettings
}

// UpdateSettingsOutput contains the result of the UpdateSettings operation.
type UpdateSettingsOutput struct {
	Settings feedback.WidgetSettings `json:"settings"`
}

// UpdateSettings saves a tenant's widget appearance config. Blank fields are
// replaced with their defaults so the widget always has something to show.
func UpdateSettings(database *sql.DB, input UpdateSettingsInput) (*UpdateSettingsOutput, error) {
	client, err := ResolveClient(database, input.Token, "")
	if err != nil {
		return nil, err
	}

	s := input.Settings
	s.ClientID = client.ID

	defaults := feedback.DefaultWidgetSettings()
	if strings.TrimSpace(s.ButtonText) == "" {
		s.ButtonText = defaults.ButtonText
	}
	if strings.TrimSpace(s.ButtonColor) == "" {
		s.ButtonColor = defaults.ButtonColor
	}
	if strings.TrimSpace(s.ButtonPos) == "" {
		s.ButtonPos = defaults.ButtonPos
	}
	if strings.TrimSpace(s.ModalTitle) == "" {
		s.ModalTitle = defaults.ModalTitle
	}
	if strings.TrimSpace(s.ModalSubtitle) == "" {
		s.ModalSubtitle = defaults.ModalSubtitle
	}
	if !validButtonPositions[s.ButtonPos] {
		return nil, errors.NewInvalidRequest("button_position must be one of bottom-right, bottom-left, top-right, top-left")
	}

	if err := db.UpsertWidgetSettings(database, &s); err != nil {
		return nil, err
	}

	return &UpdateSettingsOutput{Settings: s}, nil
}
