package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zhenyapindos/TaskManagerService/models"
	"github.com/zhenyapindos/TaskManagerService/routes"
	"github.com/zhenyapindos/TaskManagerService/services"
	"github.com/zhenyapindos/TaskManagerService/utils"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB

	admin  models.User
	worker models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectUser{},
		&models.Task{},
		&models.TaskUser{},
		&models.Calendar{},
		&models.Event{},
		&models.EventUser{},
		&models.Comment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cache := services.NewNotificationCache()
	clock := services.SystemClock()
	notifications := services.NewNotificationService(db, cache, clock)

	router := routes.SetupRouter(routes.Services{
		DB:            db,
		Tasks:         services.NewTaskService(db, clock, notifications),
		Projects:      services.NewProjectService(db, clock, notifications),
		Events:        services.NewEventService(db, clock, notifications),
		Comments:      services.NewCommentService(db, clock, notifications),
		Notifications: notifications,
	})

	admin := models.User{ID: uuid.NewString(), Username: "admin", Email: "admin@example.com"}
	worker := models.User{ID: uuid.NewString(), Username: "worker", Email: "worker@example.com"}

	for _, u := range []*models.User{&admin, &worker} {
		h, err := utils.HashPassword("pass1234")
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		u.Password = h
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user %s: %v", u.Email, err)
		}
	}

	return &testEnv{router: router, db: db, admin: admin, worker: worker}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, u models.User) map[string]string {
	t.Helper()
	tok, err := utils.GenerateJWT(u)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	regBody := map[string]any{
		"username": "newuser",
		"email":    "new@example.com",
		"password": "pass1234",
	}

	w := doRequest(t, env.router, http.MethodPost, "/register", regBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}

	loginBody := map[string]any{"email": "new@example.com", "password": "pass1234"}
	w = doRequest(t, env.router, http.MethodPost, "/login", loginBody, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal login resp: %v", err)
	}
	if resp["token"] == nil || resp["token"] == "" {
		t.Fatalf("expected token in response: %v", resp)
	}

	w = doRequest(t, env.router, http.MethodGet, "/me", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("GET /me without token expected 401 got=%d", w.Code)
	}
}

func TestProjectAndTaskFlow(t *testing.T) {
	env := setupTestEnv(t)

	adminAuth := bearerFor(t, env.admin)
	workerAuth := bearerFor(t, env.worker)

	w := doRequest(t, env.router, http.MethodPost, "/projects", map[string]any{"title": "P1"}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /projects status=%d body=%s", w.Code, w.Body.String())
	}
	var project models.Project
	if err := json.Unmarshal(w.Body.Bytes(), &project); err != nil {
		t.Fatalf("unmarshal project: %v", err)
	}

	// Invite and accept.
	invite := map[string]any{"email_or_username": "worker"}
	w = doRequest(t, env.router, http.MethodPost, fmt.Sprintf("/projects/%d/invite", project.ID), invite, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("invite status=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodPost, fmt.Sprintf("/projects/%d/accept", project.ID), nil, workerAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status=%d body=%s", w.Code, w.Body.String())
	}

	// The invitation produced an unread notification for the worker.
	w = doRequest(t, env.router, http.MethodGet, "/notifications/new", nil, workerAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /notifications/new status=%d body=%s", w.Code, w.Body.String())
	}
	var poll map[string]bool
	if err := json.Unmarshal(w.Body.Bytes(), &poll); err != nil {
		t.Fatalf("unmarshal poll: %v", err)
	}
	if !poll["has_unread"] {
		t.Fatalf("expected has_unread=true after invite, body=%s", w.Body.String())
	}

	// Workers cannot create tasks.
	createTask := map[string]any{"project_id": project.ID, "title": "T1"}
	w = doRequest(t, env.router, http.MethodPost, "/tasks", createTask, workerAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("POST /tasks as worker expected 403 got=%d body=%s", w.Code, w.Body.String())
	}

	start := time.Now().Add(-time.Hour).UTC()
	createTask = map[string]any{
		"project_id":     project.ID,
		"title":          "T1",
		"start_date":     start.Format(time.RFC3339),
		"duration_hours": 2,
	}
	w = doRequest(t, env.router, http.MethodPost, "/tasks", createTask, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	var created models.Task
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal created task: %v", err)
	}
	if created.Status != "in_progress" {
		t.Fatalf("expected in_progress, got %q", created.Status)
	}
	if created.Deadline == nil {
		t.Fatalf("expected deadline to be derived")
	}

	// Assign the worker; they get a notification.
	w = doRequest(t, env.router, http.MethodPost, fmt.Sprintf("/tasks/%d/assign", created.ID),
		map[string]any{"username": "worker"}, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("assign status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/notifications/unread", nil, workerAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /notifications/unread status=%d body=%s", w.Code, w.Body.String())
	}
	var unread []models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &unread); err != nil {
		t.Fatalf("unmarshal unread: %v", err)
	}
	if len(unread) != 2 {
		t.Fatalf("expected 2 unread notifications, got %d", len(unread))
	}

	// Bulk acknowledge empties the poll.
	ids := []uint{unread[0].ID, unread[1].ID}
	w = doRequest(t, env.router, http.MethodPost, "/notifications/read", map[string]any{"ids": ids}, workerAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /notifications/read status=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodGet, "/notifications/new", nil, workerAuth)
	if err := json.Unmarshal(w.Body.Bytes(), &poll); err != nil {
		t.Fatalf("unmarshal poll: %v", err)
	}
	if poll["has_unread"] {
		t.Fatalf("expected has_unread=false after acknowledge")
	}

	// The log still remembers everything.
	w = doRequest(t, env.router, http.MethodGet, "/notifications", nil, workerAuth)
	var all []models.Notification
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("unmarshal all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 logged notifications, got %d", len(all))
	}

	// Mark done as creator; deadline clears.
	w = doRequest(t, env.router, http.MethodPut, fmt.Sprintf("/tasks/%d/done", created.ID), nil, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /tasks/:id/done status=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), nil, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /tasks/:id status=%d body=%s", w.Code, w.Body.String())
	}
	var info services.TaskInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("unmarshal task info: %v", err)
	}
	if info.Status != "done" {
		t.Fatalf("expected done, got %q", info.Status)
	}
	if info.Deadline != nil {
		t.Fatalf("expected deadline cleared on done, got %v", info.Deadline)
	}

	w = doRequest(t, env.router, http.MethodDelete, fmt.Sprintf("/tasks/%d", created.ID), nil, adminAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE /tasks/:id status=%d body=%s", w.Code, w.Body.String())
	}
	w = doRequest(t, env.router, http.MethodGet, fmt.Sprintf("/tasks/%d", created.ID), nil, adminAuth)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET deleted task expected 404 got=%d", w.Code)
	}
}
