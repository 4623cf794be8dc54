package domain

import "testing"

func strPtr(s string) *string { return &s }

func TestSettingsOverride_Merge(t *testing.T) {
	base := Settings{
		AppID:         "cli_pref",
		AppSecret:     "pref-secret",
		ReceiveID:     "pref@example.com",
		ReceiveIDType: ReceiveIDTypeEmail,
	}
	prefix := true
	override := SettingsOverride{
		AppID:           strPtr("cli_local"),
		AppSecret:       strPtr("  "),
		ReceiveIDType:   strPtr("open_id"),
		PrefixTimestamp: &prefix,
	}

	got := override.Merge(base)

	if got.AppID != "cli_local" {
		t.Errorf("Expected local app id to win, got %s", got.AppID)
	}
	if got.AppSecret != "pref-secret" {
		t.Errorf("Expected blank override to be ignored, got %s", got.AppSecret)
	}
	if got.ReceiveID != "pref@example.com" {
		t.Errorf("Expected preference receive id, got %s", got.ReceiveID)
	}
	if got.ReceiveIDType != ReceiveIDTypeOpenID {
		t.Errorf("Expected open_id, got %s", got.ReceiveIDType)
	}
	if !got.PrefixTimestamp {
		t.Error("Expected prefix timestamp enabled")
	}
	if got.Domain != DefaultDomain {
		t.Errorf("Expected default domain, got %s", got.Domain)
	}
}

func TestSettingsOverride_MergeDefaults(t *testing.T) {
	got := SettingsOverride{}.Merge(Settings{})
	if got.Domain != DefaultDomain || got.ReceiveIDType != ReceiveIDTypeEmail {
		t.Errorf("Unexpected defaults: %+v", got)
	}
}

func TestSettingsOverride_Validate(t *testing.T) {
	if err := (&SettingsOverride{ReceiveIDType: strPtr("union_id")}).Validate(); err == nil {
		t.Error("Expected error for unsupported receive id type")
	}
	if err := (&SettingsOverride{ReceiveIDType: strPtr("chat_id")}).Validate(); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestSettings_Status(t *testing.T) {
	s := Settings{Domain: DefaultDomain, AppID: "cli_a", ReceiveIDType: ReceiveIDTypeEmail}
	status := s.Status()
	if status.Complete {
		t.Fatal("Expected incomplete status")
	}
	if len(status.MissingFields) != 2 || status.MissingFields[0] != "App Secret" || status.MissingFields[1] != "Receive ID" {
		t.Errorf("Unexpected missing fields: %v", status.MissingFields)
	}

	s.AppSecret = "x"
	s.ReceiveID = "me@example.com"
	if !s.Status().Complete {
		t.Error("Expected complete status")
	}
	if s.Redacted().AppSecret != "***" {
		t.Error("Expected secret to be redacted")
	}
}

func TestMemoRequest_HistoryContent(t *testing.T) {
	if got := (MemoRequest{Text: "hi"}).HistoryContent(); got != "hi" {
		t.Errorf("Expected text, got %q", got)
	}
	if got := (MemoRequest{Files: make([]AttachedFile, 1)}).HistoryContent(); got != "📎 1 file" {
		t.Errorf("Unexpected single file label %q", got)
	}
	if got := (MemoRequest{Files: make([]AttachedFile, 3)}).HistoryContent(); got != "📎 3 files" {
		t.Errorf("Unexpected file label %q", got)
	}
}

func TestPreviewText(t *testing.T) {
	if got := PreviewText("short", 50); got != "short" {
		t.Errorf("Expected untouched text, got %q", got)
	}
	if got := PreviewText("こんにちは世界", 5); got != "こんにちは..." {
		t.Errorf("Expected rune-safe truncation, got %q", got)
	}
}
