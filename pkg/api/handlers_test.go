package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/fixedwidth/pkg/catalog"
	"github.com/ssargent/fixedwidth/pkg/codec"
)

const testAPIKey = "test-key"

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	c := catalog.New()
	require.NoError(t, c.Register("members", codec.Spec{
		RecordEnding: codec.Ending("\n"),
		Fields: []codec.FieldSpec{
			{Key: "id", Type: codec.TypeInteger, StartingPosition: 1, Length: 5, Required: true},
			{Key: "name", Type: codec.TypeString, StartingPosition: 6, Length: 8},
			{Key: "active", Type: codec.TypeBoolean, StartingPosition: 14, Length: 1, TrueValue: codec.Ptr("Y"), FalseValue: codec.Ptr("N")},
			{Key: "joined", Type: codec.TypeDate, StartingPosition: 15, Length: 8},
		},
	}))
	require.NoError(t, c.Register("legacy", codec.Spec{
		Encoding:     "latin1",
		RecordEnding: codec.NoEnding(),
		Fields: []codec.FieldSpec{
			{Key: "city", Type: codec.TypeString, StartingPosition: 1, Length: 6},
		},
	}))
	return c
}

func setupTestRouter(t *testing.T, config ServerConfig) http.Handler {
	t.Helper()
	if config.APIKey == "" {
		config.APIKey = testAPIKey
	}
	return NewRouter(testCatalog(t), config, nil, prometheus.NewRegistry())
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, data interface{}) APIResponse {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Kind    string          `json:"kind"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return APIResponse{Success: raw.Success, Error: raw.Error, Kind: raw.Kind}
}

func TestServer_handleHealth(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{})

	w := doRequest(t, h, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var data map[string]interface{}
	resp := decodeResponse(t, w, &data)
	assert.True(t, resp.Success)
	assert.Equal(t, "healthy", data["status"])
	assert.Equal(t, float64(2), data["layouts"])
}

func TestServer_handleListLayouts(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{})

	w := doRequest(t, h, "GET", "/api/v1/layouts", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var layouts []LayoutSummary
	decodeResponse(t, w, &layouts)
	require.Len(t, layouts, 2)
	assert.Equal(t, "legacy", layouts[0].Name)
	assert.Equal(t, "latin1", layouts[0].Encoding)
	assert.Equal(t, "members", layouts[1].Name)
	assert.Equal(t, 22, layouts[1].Length)
	assert.Equal(t, 23, layouts[1].TotalLength)
	assert.Equal(t, 4, layouts[1].FieldCount)
}

func TestServer_handleGetLayout(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{})

	t.Run("known layout", func(t *testing.T) {
		w := doRequest(t, h, "GET", "/api/v1/layouts/members", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var detail LayoutDetail
		decodeResponse(t, w, &detail)
		assert.Equal(t, "members", detail.Name)
		assert.Equal(t, "\n", detail.RecordEnding)
		require.Len(t, detail.Fields, 4)

		assert.Equal(t, FieldInfo{Key: "id", Type: codec.TypeInteger, Start: 1, End: 5, Length: 5, Required: true}, detail.Fields[0])
		assert.Equal(t, "Y", detail.Fields[2].TrueValue)
		assert.Equal(t, "N", detail.Fields[2].FalseValue)
		assert.Equal(t, 15, detail.Fields[3].Start)
		assert.Equal(t, 22, detail.Fields[3].End)
	})

	t.Run("unknown layout", func(t *testing.T) {
		w := doRequest(t, h, "GET", "/api/v1/layouts/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w, nil)
		assert.False(t, resp.Success)
		assert.Equal(t, "Layout not found", resp.Error)
	})
}

func TestServer_handleGenerate(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{})

	tests := []struct {
		name           string
		layout         string
		body           interface{}
		expectedStatus int
		expectedRecord string
		expectedKind   string
	}{
		{
			name:           "valid record",
			layout:         "members",
			body:           `{"record":{"id":42,"name":"Ada","active":true,"joined":"2024-03-01"}}`,
			expectedStatus: http.StatusOK,
			expectedRecord: "00042Ada     Y20240301\n",
		},
		{
			name:           "absent optional fields stay blank",
			layout:         "members",
			body:           `{"record":{"id":99999}}`,
			expectedStatus: http.StatusOK,
			expectedRecord: "99999" + strings.Repeat(" ", 17) + "\n",
		},
		{
			name:           "missing required field",
			layout:         "members",
			body:           `{"record":{"name":"Ada"}}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "required_field",
		},
		{
			name:           "value too long",
			layout:         "members",
			body:           `{"record":{"id":1,"name":"Ada Lovelace"}}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "too_long",
		},
		{
			name:           "not an integer",
			layout:         "members",
			body:           `{"record":{"id":1.5}}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   "not_integer",
		},
		{
			name:           "missing record",
			layout:         "members",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed json",
			layout:         "members",
			body:           `{"record":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty body",
			layout:         "members",
			body:           ``,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown layout",
			layout:         "nope",
			body:           `{"record":{}}`,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, h, "POST", "/api/v1/layouts/"+tt.layout+"/generate", tt.body)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			var data GenerateResponse
			resp := decodeResponse(t, w, &data)
			assert.Equal(t, tt.expectedStatus == http.StatusOK, resp.Success)
			assert.Equal(t, tt.expectedKind, resp.Kind)

			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedRecord, data.Record)
				assert.Equal(t, len(tt.expectedRecord), data.Length)
				assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(tt.expectedRecord)), data.RecordBase64)
			}
		})
	}
}

func TestServer_handleGenerate_BinaryEncoding(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{})

	w := doRequest(t, h, "POST", "/api/v1/layouts/legacy/generate", `{"record":{"city":"Malmö"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data GenerateResponse
	decodeResponse(t, w, &data)
	raw, err := base64.StdEncoding.DecodeString(data.RecordBase64)
	require.NoError(t, err)
	assert.Equal(t, []byte{'M', 'a', 'l', 'm', 0xF6, ' '}, raw)
	assert.Equal(t, 6, data.Length)
}

func TestServer_handleParse(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{})

	t.Run("text record", func(t *testing.T) {
		w := doRequest(t, h, "POST", "/api/v1/layouts/members/parse", ParseRequest{Record: strPtr("00042Ada     Y20240301\n")})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var data ParseResponse
		decodeResponse(t, w, &data)
		assert.Equal(t, json.Number("42"), jsonNumber(data.Fields["id"]))
		assert.Equal(t, "Ada", data.Fields["name"])
		assert.Equal(t, true, data.Fields["active"])
		assert.Equal(t, "2024-03-01T00:00:00Z", data.Fields["joined"])
	})

	t.Run("base64 record", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte{'M', 'a', 'l', 'm', 0xF6, ' '})
		w := doRequest(t, h, "POST", "/api/v1/layouts/legacy/parse", ParseRequest{RecordBase64: &encoded})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var data ParseResponse
		decodeResponse(t, w, &data)
		assert.Equal(t, "Malmö", data.Fields["city"])
	})

	t.Run("codec failures", func(t *testing.T) {
		tests := []struct {
			record string
			kind   string
		}{
			{"0004", "invalid_length"},
			{"00042Ada     Y20240301\r", "invalid_record_ending"},
			{"0004xAda     Y20240301\n", "not_integer"},
			{"00042Ada     ?20240301\n", "not_boolean"},
			{"00042Ada     Y20241301\n", "invalid_date"},
		}
		for _, tt := range tests {
			w := doRequest(t, h, "POST", "/api/v1/layouts/members/parse", ParseRequest{Record: strPtr(tt.record)})
			require.Equal(t, http.StatusUnprocessableEntity, w.Code, tt.record)
			resp := decodeResponse(t, w, nil)
			assert.Equal(t, tt.kind, resp.Kind, tt.record)
		}
	})

	t.Run("bad requests", func(t *testing.T) {
		bad := "not base64!"
		tests := []interface{}{
			`{}`,
			`[1,2]`,
			ParseRequest{Record: strPtr("x"), RecordBase64: strPtr("eA==")},
			ParseRequest{RecordBase64: &bad},
		}
		for _, body := range tests {
			w := doRequest(t, h, "POST", "/api/v1/layouts/members/parse", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		}
	})
}

func TestServer_BodyLimit(t *testing.T) {
	h := setupTestRouter(t, ServerConfig{MaxBodyBytes: 32})

	body := `{"record":"` + strings.Repeat("x", 64) + `"}`
	w := doRequest(t, h, "POST", "/api/v1/layouts/members/parse", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func strPtr(s string) *string { return &s }

// jsonNumber normalizes a decoded JSON number for comparison
func jsonNumber(v interface{}) json.Number {
	switch n := v.(type) {
	case float64:
		data, _ := json.Marshal(n)
		return json.Number(data)
	case json.Number:
		return n
	}
	return ""
}
