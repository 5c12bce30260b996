package models

import (
	"encoding/json"
	"strings"
)

type SignerType string

const (
	SignerTypeUnknown         SignerType = "UNKNOWN"
	SignerTypeNFC             SignerType = "NFC"
	SignerTypeColdcardNFC     SignerType = "COLDCARD_NFC"
	SignerTypePortalNFC       SignerType = "PORTAL_NFC"
	SignerTypeHardware        SignerType = "HARDWARE"
	SignerTypeAirgap          SignerType = "AIRGAP"
	SignerTypeSoftware        SignerType = "SOFTWARE"
	SignerTypeForeignSoftware SignerType = "FOREIGN_SOFTWARE"
	SignerTypeServer          SignerType = "SERVER"
)

func ParseSignerType(value string) SignerType {
	t := SignerType(strings.ToUpper(strings.TrimSpace(value)))
	switch t {
	case SignerTypeNFC, SignerTypeColdcardNFC, SignerTypePortalNFC, SignerTypeHardware,
		SignerTypeAirgap, SignerTypeSoftware, SignerTypeForeignSoftware, SignerTypeServer:
		return t
	default:
		return SignerTypeUnknown
	}
}

// SignerExtra is the JSON payload the backend attaches to a step once a key
// has been added for it.
type SignerExtra struct {
	SignerType SignerType `json:"signer_type"`
	Name       string     `json:"name,omitempty"`
}

func (e *SignerExtra) ToJSON() (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ParseSignerExtra(data string) (*SignerExtra, error) {
	var extra SignerExtra
	if err := json.Unmarshal([]byte(data), &extra); err != nil {
		return nil, err
	}
	return &extra, nil
}
