package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/gearmarket-backend/pkg/errors"
	"github.com/angelmondragon/gearmarket-backend/pkg/pagination"
)

type settingsBody struct {
	NewMessage *bool  `json:"newMessage"`
	Channel    string `json:"channel" validate:"omitempty,oneof=email push"`
}

func TestDecodeJSONBody(t *testing.T) {
	var body settingsBody
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"newMessage":false}`))
	require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), req, &body))
	require.NotNil(t, body.NewMessage)
	require.False(t, *body.NewMessage)
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	cases := map[string]string{
		"empty":    ``,
		"unknown":  `{"sms":true}`,
		"trailing": `{"newMessage":true}{"newMessage":false}`,
		"oneof":    `{"channel":"fax"}`,
		"too large": `{"channel":"` + strings.Repeat("a", MaxBodyBytes) + `"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			var body settingsBody
			req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(payload))
			err := DecodeJSONBody(httptest.NewRecorder(), req, &body)
			require.Error(t, err)
			require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
		})
	}
}

func TestParseLimit(t *testing.T) {
	limit, err := ParseLimit(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, pagination.DefaultLimit, limit)

	limit, err = ParseLimit(httptest.NewRequest(http.MethodGet, "/?limit=5", nil))
	require.NoError(t, err)
	require.Equal(t, 5, limit)

	for _, raw := range []string{"abc", "0", "-3", "101"} {
		_, err := ParseLimit(httptest.NewRequest(http.MethodGet, "/?limit="+raw, nil))
		require.Error(t, err, raw)
	}
}

func TestParseCursor(t *testing.T) {
	cursor, err := ParseCursor(httptest.NewRequest(http.MethodGet, "/?cursor=+abc+", nil))
	require.NoError(t, err)
	require.Equal(t, "abc", cursor)

	_, err = ParseCursor(httptest.NewRequest(http.MethodGet, "/?cursor="+strings.Repeat("x", 300), nil))
	require.Error(t, err)
}
