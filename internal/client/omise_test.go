package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"promptpay-checkout/internal/config"
	"promptpay-checkout/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) OmiseClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOmiseClient(&config.Omise{
		BaseApiURL: srv.URL,
		SecretKey:  "skey_test_123",
	})
}

func TestCreateSource(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/sources" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		user, _, ok := r.BasicAuth()
		if !ok || user != "skey_test_123" {
			t.Error("expected secret key as basic auth user")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("type") != "promptpay" || r.PostForm.Get("amount") != "1000" || r.PostForm.Get("currency") != "THB" {
			t.Errorf("unexpected form %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"src_1","type":"promptpay","amount":1000,"currency":"THB","scannable_code":{"image":{"download_uri":"https://example.com/qr.svg"}}}`))
	})

	source, err := c.CreateSource(context.Background(), "promptpay", 1000, "THB")
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	if source.ID != "src_1" {
		t.Errorf("expected src_1, got %s", source.ID)
	}
	if source.ScannableCode.Image.DownloadURI != "https://example.com/qr.svg" {
		t.Errorf("unexpected download uri %s", source.ScannableCode.Image.DownloadURI)
	}
}

func TestCreateCharge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/charges" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("source") != "src_1" {
			t.Errorf("expected source src_1, got %s", r.PostForm.Get("source"))
		}
		w.Write([]byte(`{"id":"chrg_1","status":"pending","amount":1000,"currency":"THB","paid":false}`))
	})

	charge, err := c.CreateCharge(context.Background(), 1000, "src_1", "THB")
	if err != nil {
		t.Fatalf("create charge: %v", err)
	}
	if charge.ID != "chrg_1" || charge.Status != model.ChargeStatusPending {
		t.Errorf("unexpected charge %+v", charge)
	}
}

func TestRetrieveCharge(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/charges/chrg_1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"id":"chrg_1","status":"successful","amount":1000,"currency":"THB","paid":true}`))
	})

	charge, err := c.RetrieveCharge(context.Background(), "chrg_1")
	if err != nil {
		t.Fatalf("retrieve charge: %v", err)
	}
	if charge.Status != model.ChargeStatusSuccessful || !charge.Paid {
		t.Errorf("unexpected charge %+v", charge)
	}
}

func TestProcessorErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"object":"error","code":"authentication_failure"}`))
	})

	if _, err := c.RetrieveCharge(context.Background(), "chrg_1"); err == nil {
		t.Fatal("expected non-2xx response to surface as error")
	}
}

func TestUnknownChargeStatusDecodes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"chrg_1","status":"brand_new_state","amount":1000,"currency":"THB"}`))
	})

	charge, err := c.RetrieveCharge(context.Background(), "chrg_1")
	if err != nil {
		t.Fatalf("retrieve charge: %v", err)
	}
	if charge.Status != model.ChargeStatusUnrecognized {
		t.Errorf("expected unrecognized status, got %s", charge.Status)
	}
}
