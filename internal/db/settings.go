package db

import (
	"database/sql"

	"github.com/pagemark/pagemark/internal/errors"
	"github.com/pagemark/pagemark/internal/feedback"
)

// GetWidgetSettings returns a tenant's widget appearance config, falling
// back to the defaults when the tenant has never saved any.
func GetWidgetSettings(db *sql.DB, clientID int64) (*feedback.WidgetSettings, error) {
	var s feedback.WidgetSettings
	err := db.QueryRow(
		"SELECT client_id, button_text, button_color, button_position, modal_title, modal_subtitle, prefill_name, prefill_email FROM widget_settings WHERE client_id = ?",
		clientID,
	).Scan(&s.ClientID, &s.ButtonText, &s.ButtonColor, &s.ButtonPos, &s.ModalTitle, &s.ModalSubtitle, &s.PrefillName, &s.PrefillEmail)
	if err == sql.ErrNoRows {
		defaults := feedback.DefaultWidgetSettings()
		defaults.ClientID = clientID
		return &defaults, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return &s, nil
}

// UpsertWidgetSettings saves a tenant's widget appearance config.
func UpsertWidgetSettings(db *sql.DB, s *feedback.WidgetSettings) error {
	query := `
		INSERT INTO widget_settings (
			client_id, button_text, button_color, button_position,
			modal_title, modal_subtitle, prefill_name, prefill_email
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(client_id) DO UPDATE SET
			button_text     = excluded.button_text,
			button_color    = excluded.button_color,
			button_position = excluded.button_position,
			modal_title     = excluded.modal_title,
			modal_subtitle  = excluded.modal_subtitle,
			prefill_name    = excluded.prefill_name,
			prefill_email   = excluded.prefill_email
	`

	_, err := db.Exec(query,
		s.ClientID, s.ButtonText, s.ButtonColor, s.ButtonPos,
		s.ModalTitle, s.ModalSubtitle, s.PrefillName, s.PrefillEmail,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}
