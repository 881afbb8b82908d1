package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agro-collector/confs"
	"agro-collector/db"
	"agro-collector/entities"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	database  db.Database
	router    http.Handler
	zoneID    string
	userID    string
	companyID string
}

func newTestEnv(t *testing.T, mutate ...func(*confs.Config)) *testEnv {
	t.Helper()
	database, err := db.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	company := &entities.Company{Name: "Agro"}
	database.GetDB().Create(company)
	zone := &entities.Zone{Name: "Field", CompanyID: company.ID}
	database.GetDB().Create(zone)
	user := &entities.Profile{FullName: "Anna", CompanyID: &company.ID}
	database.GetDB().Create(user)

	cfg := &confs.Config{
		HTTPAddr:  "127.0.0.1:0",
		Collector: confs.CollectorConfig{RunHistory: 5},
		Weather:   confs.WeatherConfig{URL: "http://127.0.0.1:1"},
	}
	for _, m := range mutate {
		m(cfg)
	}
	srv := NewServer(cfg, database, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return &testEnv{database: database, router: srv.Router(), zoneID: zone.ID, userID: user.ID, companyID: company.ID}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
		t.Errorf("health: got %d", w.Code)
	}
}

func TestCollectorPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/collector/run", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("CORS preflight: got %d, headers %v", w.Code, w.Header())
	}

	if w := env.do(t, http.MethodOptions, "/api/v1/collector/run", ""); w.Code != http.StatusNoContent {
		t.Errorf("plain OPTIONS: got %d", w.Code)
	}
}

func TestCollectorRunEndpoint(t *testing.T) {
	env := newTestEnv(t)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"value": 3}`)
	}))
	defer upstream.Close()

	low := 10.0
	sensor := &entities.Sensor{
		Name:         "Soil",
		LastReading:  datatypes.JSON(`{"api_url":"` + upstream.URL + `"}`),
		ThresholdMin: &low,
		AlertEnabled: true,
		ZoneID:       &env.zoneID,
	}
	env.database.GetDB().Create(sensor)
	env.database.GetDB().Create(&entities.Sensor{Name: "Manual"})

	w := env.do(t, http.MethodPost, "/api/v1/collector/run", "")
	if w.Code != http.StatusOK {
		t.Fatalf("run: got %d %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	results, _ := body["results"].([]interface{})
	if body["success"] != true || len(results) != 1 {
		t.Fatalf("run body: %v", body)
	}
	first := results[0].(map[string]interface{})
	if first["sensorId"] != sensor.ID || first["success"] != true || first["value"] != 3.0 {
		t.Errorf("result: %v", first)
	}
	if _, hasError := first["error"]; hasError {
		t.Errorf("successful result should not carry error: %v", first)
	}
	if w.Header().Get("X-Run-ID") == "" {
		t.Error("missing X-Run-ID header")
	}

	w = env.do(t, http.MethodGet, "/api/v1/users/"+env.userID+"/notifications?unread=true", "")
	if w.Code != http.StatusOK || decode(t, w)["count"] != 1.0 {
		t.Errorf("notifications: got %d %s", w.Code, w.Body.String())
	}

	w = env.do(t, http.MethodGet, "/api/v1/collector/runs/latest", "")
	if w.Code != http.StatusOK {
		t.Errorf("latest: got %d", w.Code)
	}
	w = env.do(t, http.MethodGet, "/api/v1/collector/stats", "")
	stats, _ := decode(t, w)["stats"].(map[string]interface{})
	if stats["total_runs"] != 1.0 || stats["last_run_sensors"] != 1.0 {
		t.Errorf("stats: %v", stats)
	}

	if w := env.do(t, http.MethodDelete, "/api/v1/collector/runs", ""); w.Code != http.StatusOK {
		t.Errorf("clear runs: got %d", w.Code)
	}
	if w := env.do(t, http.MethodGet, "/api/v1/collector/runs/latest", ""); w.Code != http.StatusNotFound {
		t.Errorf("latest after clear: got %d", w.Code)
	}
}

func TestCompanyZones(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/v1/companies/"+env.companyID+"/zones", "")
	if w.Code != http.StatusOK || decode(t, w)["count"] != 1.0 {
		t.Errorf("zones: got %d %s", w.Code, w.Body.String())
	}
}

func TestCollectorRunFailure(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/api/v1/collector/runs/latest", ""); w.Code != http.StatusNotFound {
		t.Errorf("latest before any run: got %d", w.Code)
	}

	env.database.Close()
	w := env.do(t, http.MethodPost, "/api/v1/collector/run", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("run on closed db: got %d", w.Code)
	}
	if body := decode(t, w); body["error"] == "" || body["error"] == nil {
		t.Errorf("error body: %v", body)
	}
}

func TestSensorRoutes(t *testing.T) {
	env := newTestEnv(t)
	sensor := &entities.Sensor{Name: "Wind", ZoneID: &env.zoneID, LastReading: datatypes.JSON(`{"value":4}`)}
	env.database.GetDB().Create(sensor)

	w := env.do(t, http.MethodGet, "/api/v1/sensors?zone_id="+env.zoneID, "")
	if w.Code != http.StatusOK || decode(t, w)["count"] != 1.0 {
		t.Errorf("list: got %d %s", w.Code, w.Body.String())
	}
	if w := env.do(t, http.MethodGet, "/api/v1/sensors/missing", ""); w.Code != http.StatusNotFound {
		t.Errorf("get missing: got %d", w.Code)
	}

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{"valid", "/api/v1/sensors/" + sensor.ID + "/settings", `{"api_url":"https://w.example","threshold_max":25,"alert_enabled":true}`, http.StatusOK},
		{"bad json", "/api/v1/sensors/" + sensor.ID + "/settings", `{`, http.StatusBadRequest},
		{"min over max", "/api/v1/sensors/" + sensor.ID + "/settings", `{"threshold_min":30,"threshold_max":25}`, http.StatusBadRequest},
		{"missing", "/api/v1/sensors/missing/settings", `{}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := env.do(t, http.MethodPut, tt.path, tt.body); w.Code != tt.want {
				t.Errorf("got %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}

	if w := env.do(t, http.MethodGet, "/api/v1/sensors/"+sensor.ID+"/history", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("history without influx: got %d", w.Code)
	}
}

func TestSensorRoutesHideAPIKey(t *testing.T) {
	env := newTestEnv(t)
	const secret = "sk-field-42"
	sensor := &entities.Sensor{
		Name:        "Moisture",
		LastReading: datatypes.JSON(`{"api_url":"https://m.example","api_key":"` + secret + `","value":7}`),
	}
	env.database.GetDB().Create(sensor)

	for _, path := range []string{"/api/v1/sensors", "/api/v1/sensors/" + sensor.ID} {
		w := env.do(t, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, w.Code)
		}
		if strings.Contains(w.Body.String(), secret) {
			t.Errorf("%s leaks api key: %s", path, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"api_key_set":true`) || !strings.Contains(w.Body.String(), "https://m.example") {
			t.Errorf("%s: %s", path, w.Body.String())
		}
	}

	w := env.do(t, http.MethodPut, "/api/v1/sensors/"+sensor.ID+"/settings", `{"api_url":"https://m.example","api_key":"`+secret+`"}`)
	if w.Code != http.StatusOK || strings.Contains(w.Body.String(), secret) {
		t.Errorf("settings response: got %d %s", w.Code, w.Body.String())
	}

	// the stored credential is untouched
	var stored entities.Sensor
	env.database.GetDB().First(&stored, "id = ?", sensor.ID)
	if cfg, err := stored.Reading(); err != nil || cfg.APIKey() != secret {
		t.Errorf("stored key: %v, %v", cfg, err)
	}
}

func TestNotificationRoutes(t *testing.T) {
	env := newTestEnv(t)
	n := &entities.Notification{UserID: env.userID, Title: "t", Type: entities.NotificationTypeWarning}
	env.database.GetDB().Create(n)

	if w := env.do(t, http.MethodGet, "/api/v1/users/"+env.userID+"/notifications?limit=zero", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: got %d", w.Code)
	}
	if w := env.do(t, http.MethodPut, "/api/v1/notifications/"+n.ID+"/read", ""); w.Code != http.StatusOK {
		t.Errorf("mark read: got %d", w.Code)
	}
	if w := env.do(t, http.MethodPut, "/api/v1/notifications/missing/read", ""); w.Code != http.StatusNotFound {
		t.Errorf("mark missing: got %d", w.Code)
	}
	w := env.do(t, http.MethodPut, "/api/v1/users/"+env.userID+"/notifications/read", "")
	if w.Code != http.StatusOK || decode(t, w)["updated"] != 0.0 {
		t.Errorf("mark all: got %d %s", w.Code, w.Body.String())
	}
}

func TestWeatherRoute(t *testing.T) {
	env := newTestEnv(t)
	if w := env.do(t, http.MethodGet, "/api/v1/weather?lat=55&lon=37", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured: got %d", w.Code)
	}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"name":"Тверь","dt":1780300800,"main":{"temp":9.5,"humidity":80},"weather":[{"description":"дождь","icon":"10d"}]}`)
	}))
	defer upstream.Close()

	env = newTestEnv(t, func(c *confs.Config) {
		c.Weather = confs.WeatherConfig{URL: upstream.URL, APIKey: "k"}
	})
	if w := env.do(t, http.MethodGet, "/api/v1/weather?lat=north&lon=37", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad coordinates: got %d", w.Code)
	}
	w := env.do(t, http.MethodGet, "/api/v1/weather?lat=56.86&lon=35.9", "")
	if w.Code != http.StatusOK {
		t.Fatalf("weather: got %d %s", w.Code, w.Body.String())
	}
	data, _ := decode(t, w)["data"].(map[string]interface{})
	if data["location"] != "Тверь" || data["temperature"] != 9.5 || data["description"] != "дождь" {
		t.Errorf("weather data: %v", data)
	}

	upstream.Close()
	if w := env.do(t, http.MethodGet, "/api/v1/weather?lat=56.86&lon=35.9", ""); w.Code != http.StatusBadGateway {
		t.Errorf("upstream down: got %d", w.Code)
	}
}
