package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/biz/repo"
)

// SettingsFields lists the keys accepted by Set and Unset
var SettingsFields = []string{"domain", "app_id", "app_secret", "receive_id", "receive_id_type", "prefix_timestamp"}

// SettingsUsecase layers the local override store on top of the preferences
type SettingsUsecase struct {
	repo repo.SettingsRepo
	base domain.Settings
}

// NewSettingsUsecase creates a new settings usecase; base comes from configuration
func NewSettingsUsecase(settingsRepo repo.SettingsRepo, base domain.Settings) *SettingsUsecase {
	return &SettingsUsecase{repo: settingsRepo, base: base}
}

// Effective returns the merged settings; local values win when present
func (uc *SettingsUsecase) Effective(ctx context.Context) (domain.Settings, error) {
	o, err := uc.repo.LoadOverride(ctx)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings override: %w", err)
	}
	return o.Merge(uc.base), nil
}

// Override returns the locally stored layer
func (uc *SettingsUsecase) Override(ctx context.Context) (domain.SettingsOverride, error) {
	return uc.repo.LoadOverride(ctx)
}

// Status reports the fields still missing for sending
func (uc *SettingsUsecase) Status(ctx context.Context) (domain.SetupStatus, error) {
	s, err := uc.Effective(ctx)
	if err != nil {
		return domain.SetupStatus{}, err
	}
	return s.Status(), nil
}

// Set stores one override field
func (uc *SettingsUsecase) Set(ctx context.Context, field, value string) error {
	o, err := uc.repo.LoadOverride(ctx)
	if err != nil {
		return fmt.Errorf("load settings override: %w", err)
	}
	value = strings.TrimSpace(value)

	switch field {
	case "domain":
		o.Domain = &value
	case "app_id":
		o.AppID = &value
	case "app_secret":
		o.AppSecret = &value
	case "receive_id":
		o.ReceiveID = &value
	case "receive_id_type":
		if !domain.ReceiveIDType(value).Valid() {
			return &domain.ValidationError{Entity: "settings", Problems: []string{"receive_id_type must be one of chat_id, open_id, email"}}
		}
		o.ReceiveIDType = &value
	case "prefix_timestamp":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return &domain.ValidationError{Entity: "settings", Problems: []string{"prefix_timestamp must be true or false"}}
		}
		o.PrefixTimestamp = &b
	default:
		return unknownField(field)
	}
	return uc.repo.SaveOverride(ctx, o)
}

// Unset removes one override field so the preference applies again
func (uc *SettingsUsecase) Unset(ctx context.Context, field string) error {
	o, err := uc.repo.LoadOverride(ctx)
	if err != nil {
		return fmt.Errorf("load settings override: %w", err)
	}

	switch field {
	case "domain":
		o.Domain = nil
	case "app_id":
		o.AppID = nil
	case "app_secret":
		o.AppSecret = nil
	case "receive_id":
		o.ReceiveID = nil
	case "receive_id_type":
		o.ReceiveIDType = nil
	case "prefix_timestamp":
		o.PrefixTimestamp = nil
	default:
		return unknownField(field)
	}
	return uc.repo.SaveOverride(ctx, o)
}

// SelectedChatID returns the last chat a memo was sent to
func (uc *SettingsUsecase) SelectedChatID(ctx context.Context) (string, error) {
	return uc.repo.SelectedChatID(ctx)
}

// SetSelectedChatID remembers the last chat a memo was sent to
func (uc *SettingsUsecase) SetSelectedChatID(ctx context.Context, chatID string) error {
	return uc.repo.SetSelectedChatID(ctx, chatID)
}

func unknownField(field string) error {
	return &domain.ValidationError{
		Entity:   "settings",
		Problems: []string{fmt.Sprintf("unknown field %q (want one of %s)", field, strings.Join(SettingsFields, ", "))},
	}
}
