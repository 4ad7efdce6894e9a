// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apimodel "github.com/platform-engineering-labs/composa/internal/api/model"
	"github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

type stubComposer struct {
	name string
	fn   func(cfg *model.EnvironmentConfig, g *compose.Graph) error
}

func (s *stubComposer) Name() string { return s.name }

func (s *stubComposer) Compose(cfg *model.EnvironmentConfig, g *compose.Graph) error {
	return s.fn(cfg, g)
}

func vpcComposer() compose.Composer {
	return &stubComposer{name: "network", fn: func(cfg *model.EnvironmentConfig, g *compose.Graph) error {
		return g.Add(model.ResourceDescriptor{
			Kind:       model.KindVPC,
			Key:        "main",
			Attributes: json.RawMessage(`{"CIDR":"10.0.0.0/16"}`),
		})
	}}
}

func testServer(composers ...compose.Composer) *Server {
	return NewServer(context.Background(), composers, &ServerConfig{Port: 0})
}

func postJSON(t *testing.T, s *Server, route, body string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, route, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	require.NoError(t, handler(c))
	return rec
}

func TestServer_ComposeReturnsResolvedDescriptors(t *testing.T) {
	s := testServer(vpcComposer())

	rec := postJSON(t, s, ComposeRoute, `{"Project":"acme","Environment":"dev"}`, s.Compose)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodel.ComposeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.PassID)
	require.Len(t, resp.Resources, 1)
	assert.Equal(t, model.KindVPC, resp.Resources[0].Kind)
}

func TestServer_ComposeWithoutProjectIsBadRequest(t *testing.T) {
	composed := false
	s := testServer(&stubComposer{name: "network", fn: func(cfg *model.EnvironmentConfig, g *compose.Graph) error {
		composed = true
		return nil
	}})

	rec := postJSON(t, s, ComposeRoute, `{"Environment":"dev"}`, s.Compose)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, composed, "composers must not run without a complete config")

	// A rejected request gets exactly one error document, not an error
	// followed by a handler response.
	dec := json.NewDecoder(strings.NewReader(rec.Body.String()))
	var resp apimodel.ErrorResponse[apimodel.InvalidConfigError]
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, apimodel.InvalidConfig, resp.ErrorType)
	assert.False(t, dec.More())
}

func TestServer_PlanWithoutProjectIsBadRequest(t *testing.T) {
	s := testServer(vpcComposer())

	rec := postJSON(t, s, PlanRoute, `{"Config":{"Environment":"dev"}}`, s.Plan)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp apimodel.ErrorResponse[apimodel.InvalidConfigError]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apimodel.InvalidConfig, resp.ErrorType)
}

func TestServer_ComposeReportsAllMissingAttributes(t *testing.T) {
	failing := func(name, descriptor, field string) compose.Composer {
		return &stubComposer{name: name, fn: func(cfg *model.EnvironmentConfig, g *compose.Graph) error {
			return &compose.InvalidAttributeError{Descriptor: descriptor, Missing: []string{field}}
		}}
	}
	s := testServer(failing("network", "vpc/main", "CIDR"), failing("alb", "targetgroup/web", "Port"))

	rec := postJSON(t, s, ComposeRoute, `{"Project":"acme","Environment":"dev"}`, s.Compose)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp apimodel.ErrorResponse[apimodel.InvalidAttributesError]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, apimodel.InvalidAttributes, resp.ErrorType)
	require.Len(t, resp.Data.Descriptors, 2)
	assert.Equal(t, "vpc/main", resp.Data.Descriptors[0].Descriptor)
	assert.Equal(t, []string{"Port"}, resp.Data.Descriptors[1].Missing)
}

func TestServer_ComposeMapsAmbiguousCompositionToConflict(t *testing.T) {
	s := testServer(&stubComposer{name: "alb", fn: func(cfg *model.EnvironmentConfig, g *compose.Graph) error {
		return &compose.AmbiguousCompositionError{Partition: "certificate", Detail: "both groups would be produced"}
	}})

	rec := postJSON(t, s, ComposeRoute, `{"Project":"acme","Environment":"dev"}`, s.Compose)

	require.Equal(t, http.StatusConflict, rec.Code)

	var resp apimodel.ErrorResponse[apimodel.AmbiguousCompositionError]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "certificate", resp.Data.Partition)
}

func TestServer_ValidateReportsBlockingViolations(t *testing.T) {
	s := testServer(&stubComposer{name: "network", fn: func(cfg *model.EnvironmentConfig, g *compose.Graph) error {
		g.AddRule(compose.InvariantRule{
			Name: "always-fails",
			Check: func(g *compose.Graph) []model.Violation {
				return []model.Violation{{Rule: "always-fails", Detail: "nope", Severity: model.SeverityError}}
			},
		})
		return nil
	}})

	rec := postJSON(t, s, ValidateRoute, `{"Project":"acme","Environment":"dev"}`, s.Validate)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodel.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	require.Len(t, resp.Violations, 1)
	assert.Equal(t, "always-fails", resp.Violations[0].Rule)
}

func TestServer_PlanDiffsAgainstSnapshot(t *testing.T) {
	s := testServer(vpcComposer())

	// First pass: no snapshot, everything is a create.
	rec := postJSON(t, s, PlanRoute, `{"Config":{"Project":"acme","Environment":"dev"}}`, s.Plan)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp apimodel.PlanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "Create", resp.Changes[0].Op)

	// Second pass against a matching snapshot: nothing to do.
	composeRec := postJSON(t, s, ComposeRoute, `{"Project":"acme","Environment":"dev"}`, s.Compose)
	snapshot := composeRec.Body.String()

	rec = postJSON(t, s, PlanRoute, `{"Config":{"Project":"acme","Environment":"dev"},"Snapshot":`+snapshot+`}`, s.Plan)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Changes, 1)
	assert.Equal(t, "Noop", resp.Changes[0].Op)
}

func TestServer_HealthIsOK(t *testing.T) {
	s := testServer()

	req := httptest.NewRequest(http.MethodGet, HealthRoute, nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	require.NoError(t, s.Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
