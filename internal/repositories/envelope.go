package repositories

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"ilbmart/internal/models"
	"ilbmart/pkg/restclient"
)

// dataEnvelope is the {success|status, data} wrapper used by the /user
// endpoints and the OTP login endpoint.
type dataEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

// publicScope scopes catalog calls by pincode only.
func publicScope(sess models.Session) restclient.Scope {
	return restclient.Scope{Pincode: sess.Pincode}
}

// userScope authorizes /user calls with the bearer token.
func userScope(sess models.Session) restclient.Scope {
	return restclient.Scope{Token: sess.Token}
}

// cartScope sends both the bearer token and the pincode so the backend
// prices and checks stock for the current delivery area.
func cartScope(sess models.Session) restclient.Scope {
	return restclient.Scope{Token: sess.Token, Pincode: sess.Pincode}
}

// getData issues a GET and decodes the envelope's data block into T. A
// missing or null data block yields the zero value.
func getData[T any](ctx context.Context, client *restclient.Client, path string, scope restclient.Scope) (T, error) {
	var zero T
	var env dataEnvelope
	if err := client.Get(ctx, path, scope, &env); err != nil {
		return zero, err
	}
	return decodeData[T](path, env.Data)
}

func decodeData[T any](path string, raw json.RawMessage) (T, error) {
	var out T
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s data: %w", path, err)
	}
	return out, nil
}

// decodeList decodes raw into a slice, treating anything that is not a JSON
// array as an empty list.
func decodeList[T any](path string, raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return []T{}, nil
	}
	out := []T{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %s list: %w", path, err)
	}
	return out, nil
}

func pageQuery(page models.PageRequest) string {
	return fmt.Sprintf("?limit=%d&offset=%d", page.Limit, page.Offset)
}
