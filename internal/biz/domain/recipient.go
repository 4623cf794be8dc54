package domain

import "strings"

// ReceiveIDType is the receive_id_type understood by the messages endpoint
type ReceiveIDType string

const (
	ReceiveIDTypeChatID  ReceiveIDType = "chat_id"
	ReceiveIDTypeOpenID  ReceiveIDType = "open_id"
	ReceiveIDTypeEmail   ReceiveIDType = "email"
	ReceiveIDTypeUnknown ReceiveIDType = "unknown"
)

const (
	chatIDPrefix = "oc_"
	openIDPrefix = "ou_"
)

// Valid reports whether t is one of the kinds the API accepts
func (t ReceiveIDType) Valid() bool {
	switch t {
	case ReceiveIDTypeChatID, ReceiveIDTypeOpenID, ReceiveIDTypeEmail:
		return true
	}
	return false
}

// InferKind derives the identifier kind from its shape.
// Ambiguous identifiers (a prefixed id containing "@", or more than one "@")
// yield ReceiveIDTypeUnknown.
func InferKind(id string) ReceiveIDType {
	s := strings.TrimSpace(id)
	if s == "" {
		return ReceiveIDTypeUnknown
	}

	at := strings.Count(s, "@")
	switch {
	case strings.HasPrefix(s, chatIDPrefix):
		if at > 0 {
			return ReceiveIDTypeUnknown
		}
		return ReceiveIDTypeChatID
	case strings.HasPrefix(s, openIDPrefix):
		if at > 0 {
			return ReceiveIDTypeUnknown
		}
		return ReceiveIDTypeOpenID
	case at == 1 && !strings.HasPrefix(s, "@") && !strings.HasSuffix(s, "@"):
		return ReceiveIDTypeEmail
	}
	return ReceiveIDTypeUnknown
}

// Recipient is a resolved message destination
type Recipient struct {
	ID   string
	Kind ReceiveIDType
}

// NewRecipient builds a recipient, preferring the kind implied by the id's
// shape over the caller's kind.
func NewRecipient(id string, kind ReceiveIDType) (Recipient, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Recipient{}, &ConfigurationError{Fields: []string{"receive_id"}}
	}
	if inferred := InferKind(id); inferred != ReceiveIDTypeUnknown {
		kind = inferred
	}
	if !kind.Valid() {
		return Recipient{}, &ConfigurationError{
			Fields: []string{"receive_id_type"},
			Reason: "cannot determine identifier kind for " + id,
		}
	}
	return Recipient{ID: id, Kind: kind}, nil
}
