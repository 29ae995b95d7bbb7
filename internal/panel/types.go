package panel

import (
	"bytes"
	"encoding/json"
)

// StatusSnapshot is the parsed /api/status payload. Every optional field is
// a pointer so "absent or null" stays distinguishable from a present zero:
// a nil DataLimit means unlimited, a zero one means nothing left.
type StatusSnapshot struct {
	Username     *string  `json:"username,omitempty"`
	UsedTraffic  *int64   `json:"used_traffic,omitempty"`
	DataLimit    *int64   `json:"data_limit,omitempty"`
	Expire       *int64   `json:"expire,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Links        []string `json:"links,omitempty"`
	NeedUpdate   *bool    `json:"need_to_update,omitempty"`
	IsIgnoreable *bool    `json:"is_ignoreable,omitempty"`
}

// loginRequest is the /api/login body.
type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceID   string `json:"device_id"`
	AppVersion string `json:"app_version"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type reportUpdateRequest struct {
	NewVersion string `json:"new_version"`
}

type fcmTokenRequest struct {
	FCMToken string `json:"fcm_token"`
}

// errorBody is the shape the panel uses for non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// parseStatus decodes a status body field by field. A field that is absent,
// null, or of the wrong type is treated as absent rather than failing the
// whole response; only a body that is not a JSON object at all is an error.
func parseStatus(body []byte) (*StatusSnapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}

	s := &StatusSnapshot{
		Username:     optField[string](raw, "username"),
		UsedTraffic:  optField[int64](raw, "used_traffic"),
		DataLimit:    optField[int64](raw, "data_limit"),
		Expire:       optField[int64](raw, "expire"),
		Status:       optField[string](raw, "status"),
		NeedUpdate:   optField[bool](raw, "need_to_update"),
		IsIgnoreable: optField[bool](raw, "is_ignoreable"),
	}

	if rm, ok := raw["links"]; ok && !bytes.Equal(rm, nullLiteral) {
		var links []string
		if err := json.Unmarshal(rm, &links); err == nil {
			s.Links = links
		}
	}

	return s, nil
}

var nullLiteral = []byte("null")

// optField returns a pointer to the decoded value, or nil when the key is
// absent, explicitly null, or does not decode into T.
func optField[T any](raw map[string]json.RawMessage, key string) *T {
	rm, ok := raw[key]
	if !ok || bytes.Equal(rm, nullLiteral) {
		return nil
	}
	var v T
	if err := json.Unmarshal(rm, &v); err != nil {
		return nil
	}
	return &v
}
