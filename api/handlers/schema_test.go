package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/jsonsage/enhance"
	"github.com/BaSui01/jsonsage/pipeline"
	"github.com/BaSui01/jsonsage/schema"
	"github.com/BaSui01/jsonsage/testutil"
	"github.com/BaSui01/jsonsage/testutil/fixtures"
	"github.com/BaSui01/jsonsage/testutil/mocks"
)

func newSchemaServer(t *testing.T, provider *mocks.MockProvider) *httptest.Server {
	t.Helper()
	policy := enhance.DefaultRetryPolicy()
	policy.InitialDelay = time.Millisecond
	policy.MaxDelay = time.Millisecond

	client := enhance.New(provider, zap.NewNop(), enhance.WithRetryPolicy(policy))
	facade, err := pipeline.New(client, &enhance.Config{Credential: "sk-test"}, zap.NewNop())
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewSchemaHandler(facade, zap.NewNop()).Register(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	rec := httptest.NewRecorder()
	rec.Code = resp.StatusCode
	_, err = rec.Body.ReadFrom(resp.Body)
	require.NoError(t, err)
	return rec
}

func TestSchemaHandler_Convert(t *testing.T) {
	provider := mocks.NewMockProvider()
	srv := newSchemaServer(t, provider)

	// json 字段既可以是 JSON 值，也可以是字符串
	for _, body := range []string{
		`{"json":` + fixtures.PersonJSON + `}`,
		`{"json":` + testutil.MustJSON(fixtures.PersonJSON) + `}`,
	} {
		w := post(t, srv, "/api/v1/schemas/convert", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		env := decodeEnvelope(t, w)
		assert.True(t, env.Success)
		assert.JSONEq(t, fixtures.PersonSchema, string(env.Data))
	}
	assert.Equal(t, 0, provider.GetCallCount())
}

func TestSchemaHandler_ConvertWithEnhancement(t *testing.T) {
	provider := mocks.NewSuccessProvider(fixtures.EnhancedPersonSchema)
	srv := newSchemaServer(t, provider)

	body := `{"json":` + fixtures.PersonJSON + `,"enhance":true,"description":"people"}`
	w := post(t, srv, "/api/v1/schemas/convert", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, fixtures.EnhancedPersonSchema, string(decodeEnvelope(t, w).Data))

	// 第二次命中缓存
	w = post(t, srv, "/api/v1/schemas/convert", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, provider.GetCallCount())
}

func TestSchemaHandler_ConvertErrors(t *testing.T) {
	srv := newSchemaServer(t, mocks.NewMockProvider())

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing json", `{}`, "INVALID_INPUT"},
		{"malformed json text", `{"json":"{not json"}`, "INVALID_JSON"},
		{"array root", `{"json":[1,2]}`, "INVALID_INPUT"},
		{"malformed body", `{"json":`, "INVALID_JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, srv, "/api/v1/schemas/convert", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			env := decodeEnvelope(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestSchemaHandler_Generate(t *testing.T) {
	provider := mocks.NewMockProvider().WithScript(fixtures.PersonSchema, fixtures.EnhancedPersonSchema)
	srv := newSchemaServer(t, provider)

	w := post(t, srv, "/api/v1/schemas/generate",
		`{"description":"a person","title":"Human","required":true,"additional_properties":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	s, err := schema.Parse(decodeEnvelope(t, w).Data)
	require.NoError(t, err)
	assert.Equal(t, "Human", s.Title)
	assert.Equal(t, []string{"name", "age", "tags", "address"}, s.Required)
	assert.False(t, s.AllowsAdditional())
	assert.Equal(t, 2, provider.GetCallCount())
}

func TestSchemaHandler_GenerateErrors(t *testing.T) {
	t.Run("empty description", func(t *testing.T) {
		srv := newSchemaServer(t, mocks.NewMockProvider())
		w := post(t, srv, "/api/v1/schemas/generate", `{"description":"  "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("remote failure", func(t *testing.T) {
		srv := newSchemaServer(t, mocks.NewErrorProvider(mocks.ErrMockFailure))
		w := post(t, srv, "/api/v1/schemas/generate", `{"description":"a person"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, "UPSTREAM_ERROR", env.Error.Code)
	})
}

func TestSchemaHandler_Check(t *testing.T) {
	srv := newSchemaServer(t, mocks.NewMockProvider())

	w := post(t, srv, "/api/v1/schemas/check", `{"schema":`+fixtures.PersonSchema+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"valid":true,"errors":[]}`, string(decodeEnvelope(t, w).Data))

	// 元校验失败仍是 200，结果在 data 中
	w = post(t, srv, "/api/v1/schemas/check", `{"schema":`+fixtures.NotASchema+`}`)
	require.Equal(t, http.StatusOK, w.Code)
	var res schema.Result
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Errors)
}

func TestSchemaHandler_Validate(t *testing.T) {
	srv := newSchemaServer(t, mocks.NewMockProvider())

	tests := []struct {
		name      string
		data      string
		wantValid bool
	}{
		{"matching", `{"name":"Ada","age":36}`, true},
		{"missing required", `{"name":"Ada"}`, false},
		{"wrong type", `{"name":"Ada","age":"old"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"data":` + tt.data + `,"schema":` + fixtures.EnhancedPersonSchema + `}`
			w := post(t, srv, "/api/v1/validate", body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var res schema.Result
			require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &res))
			assert.Equal(t, tt.wantValid, res.Valid, res.Errors)
		})
	}
}

func TestSchemaHandler_ValidateErrors(t *testing.T) {
	srv := newSchemaServer(t, mocks.NewMockProvider())

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing schema", `{"data":{}}`, "INVALID_INPUT"},
		{"schema not json", `{"data":{},"schema":"{oops"}`, "INVALID_JSON"},
		{"data not json", `{"data":"{oops","schema":{"type":"object"}}`, "INVALID_JSON"},
		{"structurally invalid schema", `{"data":{},"schema":{"type":"array","properties":{}}}`, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(t, srv, "/api/v1/validate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			env := decodeEnvelope(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestSchemaHandler_RejectsNonJSONContentType(t *testing.T) {
	srv := newSchemaServer(t, mocks.NewMockProvider())

	resp, err := http.Post(srv.URL+"/api/v1/schemas/check", "text/plain", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestSchemaHandler_MethodNotAllowed(t *testing.T) {
	srv := newSchemaServer(t, mocks.NewMockProvider())

	resp, err := http.Get(srv.URL + "/api/v1/schemas/check")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
