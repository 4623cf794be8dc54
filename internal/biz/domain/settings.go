package domain

import "strings"

// DefaultDomain is the Lark open platform base URL used when none is configured
const DefaultDomain = "https://open.larksuite.com"

// Credentials identify the app against the open platform
type Credentials struct {
	Domain    string
	AppID     string
	AppSecret string
}

// Missing lists the empty credential fields
func (c Credentials) Missing() []string {
	var missing []string
	if strings.TrimSpace(c.Domain) == "" {
		missing = append(missing, "domain")
	}
	if strings.TrimSpace(c.AppID) == "" {
		missing = append(missing, "app_id")
	}
	if strings.TrimSpace(c.AppSecret) == "" {
		missing = append(missing, "app_secret")
	}
	return missing
}

// Settings are the effective send preferences
type Settings struct {
	Domain          string        `json:"domain"`
	AppID           string        `json:"app_id"`
	AppSecret       string        `json:"app_secret"`
	ReceiveID       string        `json:"receive_id"`
	ReceiveIDType   ReceiveIDType `json:"receive_id_type"`
	PrefixTimestamp bool          `json:"prefix_timestamp"`
}

// Credentials extracts the app credentials
func (s Settings) Credentials() Credentials {
	return Credentials{Domain: s.Domain, AppID: s.AppID, AppSecret: s.AppSecret}
}

// Redacted returns a copy safe to print
func (s Settings) Redacted() Settings {
	if s.AppSecret != "" {
		s.AppSecret = "***"
	}
	return s
}

// SettingsOverride is the locally stored layer; set fields win over preferences
type SettingsOverride struct {
	Domain          *string `json:"domain,omitempty"`
	AppID           *string `json:"app_id,omitempty"`
	AppSecret       *string `json:"app_secret,omitempty"`
	ReceiveID       *string `json:"receive_id,omitempty"`
	ReceiveIDType   *string `json:"receive_id_type,omitempty"`
	PrefixTimestamp *bool   `json:"prefix_timestamp,omitempty"`
}

// Validate checks the shape of a deserialized override
func (o *SettingsOverride) Validate() error {
	if o.ReceiveIDType != nil && *o.ReceiveIDType != "" && !ReceiveIDType(*o.ReceiveIDType).Valid() {
		return &ValidationError{Entity: "settings", Problems: []string{"receive_id_type must be one of chat_id, open_id, email"}}
	}
	return nil
}

// Merge layers the override on top of base; empty override values are ignored
func (o SettingsOverride) Merge(base Settings) Settings {
	pick := func(v *string, fallback string) string {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
		return fallback
	}
	out := base
	out.Domain = pick(o.Domain, base.Domain)
	out.AppID = pick(o.AppID, base.AppID)
	out.AppSecret = pick(o.AppSecret, base.AppSecret)
	out.ReceiveID = pick(o.ReceiveID, base.ReceiveID)
	out.ReceiveIDType = ReceiveIDType(pick(o.ReceiveIDType, string(base.ReceiveIDType)))
	if o.PrefixTimestamp != nil {
		out.PrefixTimestamp = *o.PrefixTimestamp
	}
	if out.Domain == "" {
		out.Domain = DefaultDomain
	}
	if out.ReceiveIDType == "" {
		out.ReceiveIDType = ReceiveIDTypeEmail
	}
	return out
}

// SetupStatus reports whether sending is fully configured
type SetupStatus struct {
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missing_fields"`
}

// Status lists the settings still missing
func (s Settings) Status() SetupStatus {
	var missing []string
	check := func(v, label string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, label)
		}
	}
	check(s.Domain, "Lark Domain")
	check(s.AppID, "App ID")
	check(s.AppSecret, "App Secret")
	check(s.ReceiveID, "Receive ID")
	check(string(s.ReceiveIDType), "Receive ID Type")
	return SetupStatus{Complete: len(missing) == 0, MissingFields: missing}
}
