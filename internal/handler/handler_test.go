package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"garden-service/internal/handler"
	"garden-service/internal/middleware"
	"garden-service/internal/model"
	"garden-service/pkg/config"
	"garden-service/pkg/database"
	"garden-service/pkg/jwtutil"
	"garden-service/pkg/validate"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestAPI(t *testing.T) (*echo.Echo, func()) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Plant{}, &model.Task{}, &model.QuoteRequest{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	database.DB = db

	jwtutil.Initialize(&config.JWTConfig{SigningKey: "handler-test-key", ExpirationHours: 1})

	e := echo.New()
	e.Validator = validate.New()

	auth := e.Group("/api/auth")
	auth.POST("/register", handler.Register)
	auth.POST("/login", handler.Login)

	e.POST("/api/quotes", handler.CreateQuoteRequest)

	authed := e.Group("/api/auth")
	authed.Use(middleware.AuthMiddleware)
	authed.GET("/me", handler.GetMe)
	authed.PUT("/update-password", handler.ChangePassword)

	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.GET("/plants", handler.GetAllPlants)
	api.POST("/plants", handler.CreatePlant)
	api.GET("/plants/:id", handler.GetPlantByID)
	api.PUT("/plants/:id", handler.UpdatePlant)
	api.DELETE("/plants/:id", handler.DeletePlant)
	api.POST("/plants/:id/notes", handler.AddPlantNote)
	api.PUT("/plants/:id/care", handler.UpdateCareSchedule)
	api.POST("/tasks", handler.CreateTask)
	api.GET("/tasks", handler.GetAllTasks)
	api.GET("/tasks/range", handler.GetTasksByDateRange)
	api.PUT("/tasks/:id", handler.UpdateTask)
	api.DELETE("/tasks/:id", handler.DeleteTask)
	api.GET("/quotes", handler.GetMyQuoteRequests)

	cleanup := func() {
		_ = db.Migrator().DropTable(&model.Task{}, &model.Plant{}, &model.QuoteRequest{}, &model.User{})
	}
	return e, cleanup
}

func doJSON(e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func registerUser(t *testing.T, e *echo.Echo, email, password string) string {
	t.Helper()
	rec := doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"fullName": "Test Gardener",
		"email":    email,
		"password": password,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	data := decode(t, rec)["data"].(map[string]interface{})
	return data["token"].(string)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s%d@x.com", prefix, time.Now().UnixNano())
}

func TestAuthFlow(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	email := uniqueEmail("a")
	token := registerUser(t, e, email, "secret1")

	// Wrong password yields the same error as an unknown account
	rec := doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec = doJSON(e, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": "secret1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid login, got %d (%s)", rec.Code, rec.Body.String())
	}
	loginData := decode(t, rec)["data"].(map[string]interface{})
	user := loginData["user"].(map[string]interface{})
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password digest leaked in login response")
	}

	rec = doJSON(e, http.MethodGet, "/api/auth/me", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", rec.Code)
	}
	meUser := decode(t, rec)["data"].(map[string]interface{})["user"].(map[string]interface{})
	if meUser["id"] != user["id"] {
		t.Fatalf("expected same account id, got %v vs %v", meUser["id"], user["id"])
	}
	if _, leaked := meUser["password"]; leaked {
		t.Fatalf("password digest leaked in /me response")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	email := uniqueEmail("dup")
	registerUser(t, e, email, "secret1")

	// Same address with different case must conflict
	rec := doJSON(e, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"fullName": "Other Gardener",
		"email":    "DUP" + email[3:],
		"password": "secret2",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", rec.Code)
	}
}

func TestPlantLifecycle(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	token := registerUser(t, e, uniqueEmail("plant"), "secret1")

	planted := time.Now().Add(-5*24*time.Hour - time.Hour)
	rec := doJSON(e, http.MethodPost, "/api/plants", token, map[string]interface{}{
		"name":        "Basil",
		"type":        "Herb",
		"plantedDate": planted.Format(time.RFC3339),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plant: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	plant := decode(t, rec)["plant"].(map[string]interface{})
	if plant["daysGrowing"].(float64) != 5 {
		t.Fatalf("expected daysGrowing 5, got %v", plant["daysGrowing"])
	}
	plantID := fmt.Sprintf("%.0f", plant["id"].(float64))

	// Updating the name alone still recomputes daysGrowing
	rec = doJSON(e, http.MethodPut, "/api/plants/"+plantID, token, map[string]string{
		"name": "Sweet Basil",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update plant: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	updated := decode(t, rec)["plant"].(map[string]interface{})
	if updated["name"] != "Sweet Basil" {
		t.Fatalf("expected updated name, got %v", updated["name"])
	}
	if updated["daysGrowing"].(float64) != 5 {
		t.Fatalf("expected daysGrowing recomputed to 5, got %v", updated["daysGrowing"])
	}

	// Soft delete hides the plant from default reads
	rec = doJSON(e, http.MethodDelete, "/api/plants/"+plantID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete plant: expected 200, got %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/plants/"+plantID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for soft-deleted plant, got %d", rec.Code)
	}
	rec = doJSON(e, http.MethodGet, "/api/plants", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list plants: expected 200, got %d", rec.Code)
	}
	if count := decode(t, rec)["count"].(float64); count != 0 {
		t.Fatalf("expected empty plant list after soft delete, got %v", count)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	tokenA := registerUser(t, e, uniqueEmail("owner"), "secret1")
	tokenB := registerUser(t, e, uniqueEmail("intruder"), "secret1")

	rec := doJSON(e, http.MethodPost, "/api/plants", tokenA, map[string]string{
		"name": "Tomato", "type": "Vegetable",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create plant: expected 201, got %d", rec.Code)
	}
	plantID := fmt.Sprintf("%.0f", decode(t, rec)["plant"].(map[string]interface{})["id"].(float64))

	for _, attempt := range []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodGet, "/api/plants/" + plantID, nil},
		{http.MethodPut, "/api/plants/" + plantID, map[string]string{"name": "Stolen"}},
		{http.MethodDelete, "/api/plants/" + plantID, nil},
	} {
		rec := doJSON(e, attempt.method, attempt.path, tokenB, attempt.body)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s %s: expected 404 for foreign plant, got %d", attempt.method, attempt.path, rec.Code)
		}
	}

	// The owner can still see it
	rec = doJSON(e, http.MethodGet, "/api/plants/"+plantID, tokenA, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner get: expected 200, got %d", rec.Code)
	}
}

func TestTaskPlantLinkAndCompletion(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	token := registerUser(t, e, uniqueEmail("task"), "secret1")
	due := time.Now().AddDate(0, 0, 1).Format(time.RFC3339)

	// A task without a plant reference needs an explicit plant name
	rec := doJSON(e, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"plantName": "General",
		"task":      "Water everything",
		"dueDate":   due,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	task := decode(t, rec)["task"].(map[string]interface{})
	taskID := fmt.Sprintf("%.0f", task["id"].(float64))

	// Completing stamps completedAt; reopening clears it
	rec = doJSON(e, http.MethodPut, "/api/tasks/"+taskID, token, map[string]string{"status": "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete task: expected 200, got %d", rec.Code)
	}
	completed := decode(t, rec)["task"].(map[string]interface{})
	if completed["completedAt"] == nil {
		t.Fatalf("expected completedAt set on completion")
	}
	rec = doJSON(e, http.MethodPut, "/api/tasks/"+taskID, token, map[string]string{"status": "pending"})
	reopened := decode(t, rec)["task"].(map[string]interface{})
	if _, set := reopened["completedAt"]; set {
		t.Fatalf("expected completedAt cleared on reopening, got %v", reopened["completedAt"])
	}

	// A plant link can be set and later cleared with plant: 0
	rec = doJSON(e, http.MethodPost, "/api/plants", token, map[string]string{
		"name": "Mint", "type": "Herb",
	})
	mintID := decode(t, rec)["plant"].(map[string]interface{})["id"].(float64)
	rec = doJSON(e, http.MethodPut, "/api/tasks/"+taskID, token, map[string]interface{}{
		"plant": uint(mintID),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("link plant: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	linked := decode(t, rec)["task"].(map[string]interface{})
	if linked["plant"] == nil {
		t.Fatalf("expected plant link set, got %v", linked["plant"])
	}
	rec = doJSON(e, http.MethodPut, "/api/tasks/"+taskID, token, map[string]interface{}{
		"plant": 0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("unlink plant: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	unlinked := decode(t, rec)["task"].(map[string]interface{})
	if _, set := unlinked["plant"]; set {
		t.Fatalf("expected plant link cleared, got %v", unlinked["plant"])
	}

	// Linking to a soft-deleted plant fails like a missing one
	rec = doJSON(e, http.MethodPost, "/api/plants", token, map[string]string{
		"name": "Chili", "type": "Vegetable",
	})
	plantID := decode(t, rec)["plant"].(map[string]interface{})["id"].(float64)
	doJSON(e, http.MethodDelete, fmt.Sprintf("/api/plants/%.0f", plantID), token, nil)

	rec = doJSON(e, http.MethodPost, "/api/tasks", token, map[string]interface{}{
		"plant":   uint(plantID),
		"task":    "Water the chili",
		"dueDate": due,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for task on deleted plant, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func createTask(t *testing.T, e *echo.Echo, token, name, priority, status string, due time.Time) {
	t.Helper()
	body := map[string]interface{}{
		"plantName": "General",
		"task":      name,
		"priority":  priority,
		"dueDate":   due.Format(time.RFC3339),
	}
	if status != "" {
		body["status"] = status
	}
	rec := doJSON(e, http.MethodPost, "/api/tasks", token, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create task %q: expected 201, got %d (%s)", name, rec.Code, rec.Body.String())
	}
}

func taskNames(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("list tasks: expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	raw := decode(t, rec)["tasks"].([]interface{})
	names := make([]string, 0, len(raw))
	for _, item := range raw {
		names = append(names, item.(map[string]interface{})["task"].(string))
	}
	return names
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTaskListOrderingAndFilters(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	token := registerUser(t, e, uniqueEmail("order"), "secret1")

	base := time.Now().In(time.Local)
	day1 := time.Date(base.Year(), base.Month(), base.Day(), 10, 0, 0, 0, time.Local).AddDate(0, 0, 1)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)

	createTask(t, e, token, "low-day1", "low", "", day1)
	createTask(t, e, token, "high-day1", "high", "", day1)
	// Due late on day2 so the end of the range window must still cover it
	createTask(t, e, token, "medium-day2", "medium", "completed", day2.Add(13*time.Hour+30*time.Minute))
	createTask(t, e, token, "high-day3", "high", "", day3)

	// Due date ascending, high priority first on ties
	rec := doJSON(e, http.MethodGet, "/api/tasks", token, nil)
	got := taskNames(t, rec)
	want := []string{"high-day1", "low-day1", "medium-day2", "high-day3"}
	if !sameNames(got, want) {
		t.Fatalf("expected order %v, got %v", want, got)
	}

	// Status and priority filters are ANDed
	rec = doJSON(e, http.MethodGet, "/api/tasks?status=pending&priority=high", token, nil)
	got = taskNames(t, rec)
	want = []string{"high-day1", "high-day3"}
	if !sameNames(got, want) {
		t.Fatalf("expected ANDed filter result %v, got %v", want, got)
	}

	// Whole-day date filter matches a single calendar day
	rec = doJSON(e, http.MethodGet, "/api/tasks?date="+day2.Format("2006-01-02"), token, nil)
	got = taskNames(t, rec)
	want = []string{"medium-day2"}
	if !sameNames(got, want) {
		t.Fatalf("expected date filter result %v, got %v", want, got)
	}

	// Date range is inclusive of both whole days; ties within a day carry no
	// defined order here, so membership is what matters
	rec = doJSON(e, http.MethodGet,
		"/api/tasks/range?startDate="+day1.Format("2006-01-02")+"&endDate="+day2.Format("2006-01-02"),
		token, nil)
	got = taskNames(t, rec)
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks in range, got %v", got)
	}
	inRange := map[string]bool{}
	for _, name := range got {
		inRange[name] = true
	}
	for _, name := range []string{"high-day1", "low-day1", "medium-day2"} {
		if !inRange[name] {
			t.Fatalf("expected %q within the range window, got %v", name, got)
		}
	}
	if got[2] != "medium-day2" {
		t.Fatalf("expected due date ascending in range result, got %v", got)
	}

	// Missing range parameters are rejected
	rec = doJSON(e, http.MethodGet, "/api/tasks/range?startDate="+day1.Format("2006-01-02"), token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without endDate, got %d", rec.Code)
	}
}

func TestQuoteRequestCreation(t *testing.T) {
	e, cleanup := setupTestAPI(t)
	defer cleanup()

	body := map[string]interface{}{
		"plant": map[string]string{"name": "Basil", "type": "Herb"},
		"supplies": []map[string]interface{}{
			{"name": "Potting soil", "category": "essential", "quantity": 2},
		},
		"contactInfo": map[string]string{
			"fullName": "Rahim Uddin",
			"phone":    "01711111111",
			"division": "Dhaka",
			"district": "Dhaka",
			"area":     "Mirpur",
			"address":  "House 1, Road 2",
		},
	}

	// Anonymous creation succeeds
	rec := doJSON(e, http.MethodPost, "/api/quotes", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create quote: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	quote := decode(t, rec)["quote"].(map[string]interface{})
	requestID := quote["requestId"].(string)
	if len(requestID) != 11 || requestID[:3] != "REQ" {
		t.Fatalf("unexpected request id %q", requestID)
	}
	if quote["status"] != "pending" {
		t.Fatalf("expected status pending, got %v", quote["status"])
	}

	// Invalid phone is rejected
	bad := map[string]interface{}{
		"plant": map[string]string{"name": "Basil"},
		"contactInfo": map[string]string{
			"fullName": "Rahim Uddin",
			"phone":    "123",
			"division": "Dhaka",
			"district": "Dhaka",
			"area":     "Mirpur",
			"address":  "House 1, Road 2",
		},
	}
	rec = doJSON(e, http.MethodPost, "/api/quotes", "", bad)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid phone, got %d", rec.Code)
	}
}
