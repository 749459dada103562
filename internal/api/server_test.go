package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diogoX451/devicedb/internal/api/dto"
	"github.com/diogoX451/devicedb/internal/core/service"
	"github.com/diogoX451/devicedb/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := service.NewDeviceService(memory.New(), nil, nil)
	return NewServer(svc, nil, nil)
}

func do(t *testing.T, s *Server, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

// addDevice cria via POST e devolve o Location.
func addDevice(t *testing.T, s *Server, name, brand string) string {
	t.Helper()
	body, _ := json.Marshal(dto.AddDeviceRequest{Name: name, Brand: brand})
	rec := do(t, s, http.MethodPost, "/api/v1/device", string(body))
	if rec.Code != http.StatusCreated {
		t.Fatalf("add device: status %d body %s", rec.Code, rec.Body)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "/api/v1/device/") {
		t.Fatalf("unexpected Location %q", location)
	}
	return location
}

func decodeDevice(t *testing.T, rec *httptest.ResponseRecorder) dto.DeviceResponse {
	t.Helper()
	var got dto.DeviceResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode device: %v (%s)", err, rec.Body)
	}
	return got
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var got dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return got
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var got dto.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Status != "healthy" || got.Version != APIVersion {
		t.Fatalf("unexpected health %+v", got)
	}
}

func TestAddAndGetDevice(t *testing.T) {
	s := newTestServer(t)
	before := time.Now().UTC().Add(-time.Second)

	location := addDevice(t, s, "Phone", "Acme")

	rec := do(t, s, http.MethodGet, location, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("api-supported-versions"); got != APIVersion {
		t.Errorf("api-supported-versions: got %q", got)
	}

	got := decodeDevice(t, rec)
	if got.Name != "Phone" || got.Brand != "Acme" {
		t.Fatalf("unexpected device %+v", got)
	}
	if "/api/v1/device/"+got.ID != location {
		t.Fatalf("id %s does not match Location %s", got.ID, location)
	}
	if got.CreatedOn.Before(before) {
		t.Fatalf("created_on %v too old", got.CreatedOn)
	}
}

func TestAddDeviceRejectsInvalidInput(t *testing.T) {
	s := newTestServer(t)
	long := strings.Repeat("x", 101)

	bodies := map[string]string{
		"not json":       `{"name":`,
		"missing name":   `{"brand":"Acme"}`,
		"missing brand":  `{"name":"Phone"}`,
		"blank name":     `{"name":"  ","brand":"Acme"}`,
		"name too long":  `{"name":"` + long + `","brand":"Acme"}`,
		"brand too long": `{"name":"Phone","brand":"` + long + `"}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/device", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body)
			}
		})
	}
}

func TestGetDevice(t *testing.T) {
	s := newTestServer(t)

	t.Run("unknown id", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/v1/device/0b7a3a4e-5c3f-4c8e-9b1a-1d2e3f4a5b6c", "")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		if code := decodeError(t, rec).Code; code != "DEVICE_NOT_FOUND" {
			t.Fatalf("unexpected code %q", code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/v1/device/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("nil uuid", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/api/v1/device/00000000-0000-0000-0000-000000000000", "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestListDevices(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/v1/device", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %q", body)
	}

	addDevice(t, s, "Phone", "Acme")
	addDevice(t, s, "Tablet", "Globex")
	addDevice(t, s, "Watch", "Acme")

	var all []dto.DeviceResponse
	rec = do(t, s, http.MethodGet, "/api/v1/device", "")
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(all))
	}
	// ordem de inserção
	if all[0].Name != "Phone" || all[1].Name != "Tablet" || all[2].Name != "Watch" {
		t.Fatalf("unexpected order %+v", all)
	}
}

func TestListDevicesByBrand(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"one", "two", "three"} {
		addDevice(t, s, name, "Acme")
		time.Sleep(2 * time.Millisecond)
	}
	addDevice(t, s, "other", "Globex")

	var got []dto.DeviceResponse
	rec := do(t, s, http.MethodGet, "/api/v1/device?brand=Acme", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0].Name != "three" || got[2].Name != "one" {
		t.Fatalf("expected newest first, got %+v", got)
	}

	got = nil
	rec = do(t, s, http.MethodGet, "/api/v1/device?brand=Acme&offset=1&size=1", "")
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "two" {
		t.Fatalf("unexpected page %+v", got)
	}

	for _, target := range []string{
		"/api/v1/device?brand=",
		"/api/v1/device?brand=Acme&offset=-1",
		"/api/v1/device?brand=Acme&size=abc",
		"/api/v1/device?size=10",
	} {
		if rec := do(t, s, http.MethodGet, target, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, rec.Code)
		}
	}
}

func TestDeleteDevice(t *testing.T) {
	s := newTestServer(t)
	location := addDevice(t, s, "Phone", "Acme")

	if rec := do(t, s, http.MethodDelete, location, ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodGet, location, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, location, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", rec.Code)
	}
	if rec := do(t, s, http.MethodDelete, "/api/v1/device/nope", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestPatchDevice(t *testing.T) {
	const jsonPatch = "application/json-patch+json"

	t.Run("name", func(t *testing.T) {
		s := newTestServer(t)
		location := addDevice(t, s, "Phone", "Acme")

		rec := do(t, s, http.MethodPatch, location, `[{"op":"replace","path":"/name","value":"Smartphone"}]`, "Content-Type", jsonPatch)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d (%s)", rec.Code, rec.Body)
		}
		got := decodeDevice(t, do(t, s, http.MethodGet, location, ""))
		if got.Name != "Smartphone" || got.Brand != "Acme" {
			t.Fatalf("unexpected device %+v", got)
		}
	})

	t.Run("brand", func(t *testing.T) {
		s := newTestServer(t)
		location := addDevice(t, s, "Phone", "Acme")

		rec := do(t, s, http.MethodPatch, location, `[{"op":"replace","path":"/brand","value":"Globex"}]`, "Content-Type", "application/json")
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d (%s)", rec.Code, rec.Body)
		}
		got := decodeDevice(t, do(t, s, http.MethodGet, location, ""))
		if got.Name != "Phone" || got.Brand != "Globex" {
			t.Fatalf("unexpected device %+v", got)
		}
	})

	t.Run("both and last write wins", func(t *testing.T) {
		s := newTestServer(t)
		location := addDevice(t, s, "Phone", "Acme")

		body := `[
			{"op":"replace","path":"/name","value":"A"},
			{"op":"replace","path":"/brand","value":"Globex"},
			{"op":"replace","path":"/name","value":"B"}
		]`
		if rec := do(t, s, http.MethodPatch, location, body, "Content-Type", jsonPatch); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d (%s)", rec.Code, rec.Body)
		}
		got := decodeDevice(t, do(t, s, http.MethodGet, location, ""))
		if got.Name != "B" || got.Brand != "Globex" {
			t.Fatalf("unexpected device %+v", got)
		}
	})

	t.Run("add op is rejected even for missing device", func(t *testing.T) {
		s := newTestServer(t)
		rec := do(t, s, http.MethodPatch, "/api/v1/device/0b7a3a4e-5c3f-4c8e-9b1a-1d2e3f4a5b6c",
			`[{"op":"add","path":"/name","value":"x"}]`, "Content-Type", jsonPatch)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		got := decodeError(t, rec)
		if got.Code != "UNSUPPORTED_PATCH_OP" || got.Error != "Only replace patches supported in this domain." {
			t.Fatalf("unexpected error %+v", got)
		}
	})

	t.Run("missing device", func(t *testing.T) {
		s := newTestServer(t)
		rec := do(t, s, http.MethodPatch, "/api/v1/device/0b7a3a4e-5c3f-4c8e-9b1a-1d2e3f4a5b6c",
			`[{"op":"replace","path":"/name","value":"x"}]`, "Content-Type", jsonPatch)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("bad documents", func(t *testing.T) {
		s := newTestServer(t)
		location := addDevice(t, s, "Phone", "Acme")

		bodies := map[string]string{
			"empty body":   "",
			"empty array":  "[]",
			"malformed":    `[{"op":`,
			"unknown path": `[{"op":"replace","path":"/color","value":"red"}]`,
			"wrong type":   `[{"op":"replace","path":"/name","value":7}]`,
			"blank name":   `[{"op":"replace","path":"/name","value":""}]`,
			"blank brand":  `[{"op":"replace","path":"/brand","value":" "}]`,
			"long name":    `[{"op":"replace","path":"/name","value":"` + strings.Repeat("n", 101) + `"}]`,
		}
		for name, body := range bodies {
			rec := do(t, s, http.MethodPatch, location, body, "Content-Type", jsonPatch)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d (%s)", name, rec.Code, rec.Body)
			}
		}

		got := decodeDevice(t, do(t, s, http.MethodGet, location, ""))
		if got.Name != "Phone" || got.Brand != "Acme" {
			t.Fatalf("device changed by rejected patches: %+v", got)
		}
	})

	t.Run("unsupported media type", func(t *testing.T) {
		s := newTestServer(t)
		location := addDevice(t, s, "Phone", "Acme")
		rec := do(t, s, http.MethodPatch, location, `[{"op":"replace","path":"/name","value":"x"}]`, "Content-Type", "text/plain")
		if rec.Code != http.StatusUnsupportedMediaType {
			t.Fatalf("expected 415, got %d", rec.Code)
		}
	})
}

func TestOpenAPIAndFallback(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/openapi.json", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("openapi.json status %d", rec.Code)
	}
	var doc map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&doc); err != nil {
		t.Fatalf("openapi.json is not JSON: %v", err)
	}
	paths, _ := doc["paths"].(map[string]any)
	if _, ok := paths["/api/v1/device/{id}"]; !ok {
		t.Fatalf("device path missing from openapi: %v", paths)
	}

	rec = do(t, s, http.MethodGet, "/openapi.yaml", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "openapi:") {
		t.Fatalf("openapi.yaml: status %d", rec.Code)
	}

	rec = do(t, s, http.MethodGet, "/", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/openapi.json" {
		t.Fatalf("expected redirect to /openapi.json, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	addDevice(t, s, "Phone", "Acme")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "devicedb_http_requests_total") {
		t.Fatal("http metrics not exported")
	}
}
