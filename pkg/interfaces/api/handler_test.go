package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lararachidi/agent-supply-chain/pkg/application/services/analytics"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/emails"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/genie"
	"github.com/lararachidi/agent-supply-chain/pkg/application/services/rawmaterial"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
	testhelpers "github.com/lararachidi/agent-supply-chain/pkg/infrastructure/testing"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	data := testhelpers.BuildPharmaTestData()

	embedder, err := emails.NewHashingEmbedder(64)
	require.NoError(t, err)
	emailSvc := emails.NewService(data.Output, embedder, config.EmailsConfig{Count: 5, Seed: 1, TopK: 2}, nil)
	_, err = emailSvc.Generate(ctx)
	require.NoError(t, err)
	_, err = emailSvc.Index(ctx)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(reg)
	require.NoError(t, err)

	rawSvc := rawmaterial.NewService(data.BOM, data.Output, data.Output, nil)
	analyticsSvc := analytics.NewService(data.Demand, data.Output, data.Network, rawSvc, nil)
	tools := genie.NewToolbox(rawSvc, analyticsSvc, emailSvc, sink)
	asker := genie.NewService(tools, nil, nil, sink)
	return NewHandler(tools, asker, nil, Options{MetricsPath: "/metrics", Gatherer: reg})
}

func usageByMaterial(t *testing.T, body []byte, key func(entities.MaterialUsage) entities.MaterialID) map[entities.MaterialID]entities.Quantity {
	t.Helper()
	var usage []entities.MaterialUsage
	require.NoError(t, json.Unmarshal(body, &usage))
	out := make(map[entities.MaterialID]entities.Quantity, len(usage))
	for _, u := range usage {
		out[key(u)] = u.QtyPer
	}
	return out
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHandler_RawFromProduct(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/functions/raw_from_product?product=syringe_1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	usage := usageByMaterial(t, rr.Body.Bytes(), func(u entities.MaterialUsage) entities.MaterialID { return u.Raw })
	assert.Equal(t, map[entities.MaterialID]entities.Quantity{"raw_1": 6, "raw_2": 1}, usage)
}

func TestHandler_ProductFromRaw(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/functions/product_from_raw?raw=raw_1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	usage := usageByMaterial(t, rr.Body.Bytes(), func(u entities.MaterialUsage) entities.MaterialID { return u.Product })
	assert.Equal(t, map[entities.MaterialID]entities.Quantity{"syringe_1": 6, "vial_1": 7}, usage)
}

func TestHandler_RevenueRisk(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/functions/revenue_risk?raw=raw_1&shortfall=13")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var risk entities.RevenueRisk
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &risk))
	require.Len(t, risk.Exposures, 2)
	assert.Equal(t, entities.MaterialID("syringe_1"), risk.Exposures[0].Product)
	assert.Equal(t, entities.Quantity(3), risk.Exposures[0].LostUnits)
	assert.True(t, risk.Exposures[1].MissingPrice)
	assert.Equal(t, entities.Quantity(2), risk.Exposures[1].LostUnits)
	assert.Equal(t, "29.97", risk.MaxExposure.String())
}

func TestHandler_LookupProductDemand(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/functions/lookup_product_demand?product=syringe_1&wholesaler=Wholesaler_1")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"total_historical":15`)
}

func TestHandler_QueryEmails(t *testing.T) {
	rr := get(t, newTestHandler(t), "/api/functions/query_unstructured_emails?query=delivery+delays&k=3")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var matches []entities.EmailMatch
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &matches))
	assert.Len(t, matches, 3)
}

func TestHandler_Ask(t *testing.T) {
	h := newTestHandler(t)
	rr := httptest.NewRecorder()
	body := strings.NewReader(`{"question": "which products use raw_1?"}`)
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/functions/ask_genie_pharma_gsc", body))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var answer struct {
		Tool   string `json:"tool"`
		Source string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &answer))
	assert.Equal(t, "product_from_raw", answer.Tool)
	assert.Equal(t, "rules", answer.Source)
}

func TestHandler_Errors(t *testing.T) {
	h := newTestHandler(t)
	tests := []struct {
		name   string
		target string
		status int
	}{
		{"missing parameter", "/api/functions/raw_from_product", http.StatusBadRequest},
		{"unknown product", "/api/functions/raw_from_product?product=ghost_1", http.StatusNotFound},
		{"raw given as product", "/api/functions/raw_from_product?product=raw_1", http.StatusBadRequest},
		{"bad shortfall", "/api/functions/revenue_risk?raw=raw_1&shortfall=many", http.StatusBadRequest},
		{"zero shortfall", "/api/functions/revenue_risk?raw=raw_1&shortfall=0", http.StatusBadRequest},
		{"no demand", "/api/functions/lookup_product_demand?product=component_1", http.StatusNotFound},
		{"bad k", "/api/functions/query_unstructured_emails?query=x&k=two", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := get(t, h, tt.target)
			assert.Equal(t, tt.status, rr.Code)

			var body errorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandler_AskBadBody(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/functions/ask_genie_pharma_gsc", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/functions/raw_from_product?product=syringe_1", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_HealthAndMetrics(t *testing.T) {
	h := newTestHandler(t)

	rr := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rr.Code)

	get(t, h, "/api/functions/raw_from_product?product=syringe_1")
	rr = get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `supplychain_query_functions_total{function="raw_from_product",outcome="success"} 1`)
}

func TestServe_ReturnsWhenAddressInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	done := make(chan error, 1)
	go func() {
		done <- Serve(context.Background(), ln.Addr().String(), http.NotFoundHandler(), nil)
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after the listener failed")
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler(), nil)
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}
