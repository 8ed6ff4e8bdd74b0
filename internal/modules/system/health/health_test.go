package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tsystem/portal/internal/config"
	"github.com/tsystem/portal/internal/database"
	"github.com/tsystem/portal/internal/pkg/audit"
)

func TestHealthStaysLiveWhenDatabaseIsDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	db, err := database.Connect(&config.AppConfig{
		Env:      "test",
		Database: config.DatabaseRuntimeConfig{Driver: config.DriverSQLite},
		DSN:      "file:" + name + "?mode=memory&cache=shared",
	}, true)
	if err != nil {
		t.Fatalf("database.Connect() error = %v", err)
	}

	r := gin.New()
	api := r.Group("/api")
	RegisterRoutes(api, Deps{DB: db, Audit: audit.NewRecorder(db, nil, "co"), Environment: "test"}, nil)

	get := func() (int, map[string]any) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode body %q: %v", w.Body.String(), err)
		}
		return w.Code, body
	}

	code, body := get()
	if code != http.StatusOK || body["status"] != "ok" || body["database"] != true {
		t.Fatalf("healthy = %d %v", code, body)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	_ = sqlDB.Close()

	code, body = get()
	if code != http.StatusOK {
		t.Errorf("status code = %d, want 200 while the database is down", code)
	}
	if body["status"] != "degraded" || body["database"] != false {
		t.Errorf("body = %v", body)
	}
	if body["environment"] != "test" {
		t.Errorf("environment = %v", body["environment"])
	}
}
