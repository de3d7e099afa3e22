package platform

import "encoding/json"

// Identity is the provider-agnostic identity blob stored alongside each
// credential. OpenID is only populated for TikTok, whose user info endpoint
// needs it as a request parameter.
type Identity struct {
	ExternalID  string `json:"id"`
	DisplayName string `json:"display_name"`
	OpenID      string `json:"open_id,omitempty"`
}

func (i Identity) Encode() string {
	raw, err := json.Marshal(i)
	if err != nil {
		return i.ExternalID
	}
	return string(raw)
}

// DecodeIdentity tolerates legacy rows where the column held a bare provider
// id rather than the structured blob. A bare value doubles as id, display
// name and open_id, which matches how those rows were written.
func DecodeIdentity(raw string) Identity {
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err == nil &&
		(id.ExternalID != "" || id.DisplayName != "" || id.OpenID != "") {
		return id
	}
	return Identity{ExternalID: raw, DisplayName: raw, OpenID: raw}
}
