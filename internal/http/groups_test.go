package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/openshelf/internal/database/groups"
	"github.com/openshelf/openshelf/internal/entities"
)

type mockGroupStore struct {
	createErr error
	created   []entities.Group
	existing  []entities.Group
}

func (m *mockGroupStore) CreateGroup(name, description string, creatorID uint) (*entities.Group, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	if name == "" {
		return nil, groups.ErrNameRequired
	}
	group := entities.Group{
		ID:          uint(len(m.created) + 1),
		Name:        name,
		Description: description,
		CreatorID:   creatorID,
	}
	m.created = append(m.created, group)
	return &group, nil
}

func (m *mockGroupStore) GetGroupByID(id uint) (*entities.Group, error) {
	for i := range m.existing {
		if m.existing[i].ID == id {
			return &m.existing[i], nil
		}
	}
	return nil, groups.ErrGroupNotFound
}

func (m *mockGroupStore) ListGroupsForUser(userID uint) ([]entities.Group, error) {
	return m.existing, nil
}

func (m *mockGroupStore) IsMember(groupID, userID uint) (bool, error) {
	return false, nil
}

func setupGroupsRouter(store *mockGroupStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewGroupsController(store)

	router := gin.New()
	router.POST("/api/groups", controller.CreateGroup)
	router.GET("/api/groups", controller.ListGroups)
	router.GET("/api/groups/:id", controller.GetGroup)
	return router
}

func TestCreateGroup(t *testing.T) {
	store := &mockGroupStore{}
	router := setupGroupsRouter(store)

	body, _ := json.Marshal(gin.H{"name": "sci-fi club", "creator_id": 3})
	req, _ := http.NewRequest("POST", "/api/groups", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(store.created) != 1 || store.created[0].CreatorID != 3 {
		t.Errorf("expected group created by user 3, got %+v", store.created)
	}
}

func TestCreateGroup_MissingName(t *testing.T) {
	store := &mockGroupStore{}
	router := setupGroupsRouter(store)

	body, _ := json.Marshal(gin.H{"creator_id": 3})
	req, _ := http.NewRequest("POST", "/api/groups", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestCreateGroup_CreatorNotFound(t *testing.T) {
	store := &mockGroupStore{createErr: groups.ErrCreatorNotFound}
	router := setupGroupsRouter(store)

	body, _ := json.Marshal(gin.H{"name": "sci-fi club", "creator_id": 99})
	req, _ := http.NewRequest("POST", "/api/groups", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGetGroup(t *testing.T) {
	store := &mockGroupStore{existing: []entities.Group{
		{ID: 2, Name: "sci-fi club", CreatorID: 3},
	}}
	router := setupGroupsRouter(store)

	req, _ := http.NewRequest("GET", "/api/groups/2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var group entities.Group
	if err := json.Unmarshal(w.Body.Bytes(), &group); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if group.Name != "sci-fi club" {
		t.Errorf("expected sci-fi club, got %q", group.Name)
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	store := &mockGroupStore{}
	router := setupGroupsRouter(store)

	req, _ := http.NewRequest("GET", "/api/groups/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestListGroups(t *testing.T) {
	store := &mockGroupStore{existing: []entities.Group{
		{ID: 1, Name: "first"},
		{ID: 2, Name: "second"},
	}}
	router := setupGroupsRouter(store)

	req, _ := http.NewRequest("GET", "/api/groups?user_id=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("expected 2 groups, got %d", resp.Count)
	}
}
