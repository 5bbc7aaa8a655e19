package biogpt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

func TestClassifyPicksTopLabel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/ishro/biogpt-aura" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer hf-token" {
			t.Errorf("missing bearer token")
		}
		_, _ = w.Write([]byte(`[[{"label":"LABEL_4","score":0.91},{"label":"LABEL_3","score":0.06},{"label":"LABEL_2","score":0.03}]]`))
	}))
	defer server.Close()

	client := New(server.URL, "hf-token", "ishro/biogpt-aura")
	prediction, err := client.Classify(context.Background(), "gland density: high; BI-RADS: 4")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if prediction.PredictedBirads != "4" || prediction.LabelID != 4 {
		t.Fatalf("predicted = %q label=%d", prediction.PredictedBirads, prediction.LabelID)
	}
	if prediction.Confidence != 0.91 {
		t.Fatalf("confidence = %f", prediction.Confidence)
	}
	if prediction.Probabilities["3"] != 0.06 {
		t.Fatalf("probabilities = %+v", prediction.Probabilities)
	}
	if prediction.ModelVersion != "ishro/biogpt-aura" {
		t.Fatalf("model version = %q", prediction.ModelVersion)
	}
}

func TestClassifyFlatResponseShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"LABEL_1","score":0.8},{"label":"LABEL_2","score":0.2}]`))
	}))
	defer server.Close()

	client := New(server.URL, "hf-token", "ishro/biogpt-aura")
	prediction, err := client.Classify(context.Background(), "normal")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if prediction.PredictedBirads != "1" {
		t.Fatalf("predicted = %q", prediction.PredictedBirads)
	}
}

func TestClassifyModelLoadingIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"Model is currently loading"}`, http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, "hf-token", "ishro/biogpt-aura")
	_, err := client.Classify(context.Background(), "text")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	if !strings.Contains(err.Error(), "currently loading") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestClassifyEmptyScoresIsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := New(server.URL, "hf-token", "ishro/biogpt-aura")
	_, err := client.Classify(context.Background(), "text")
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
