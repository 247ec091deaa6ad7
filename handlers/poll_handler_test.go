package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"evote-backend/models"
)

func doJSONRequest(router *gin.Engine, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonData, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonData)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, url, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestCreatePoll(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	pollData := gin.H{
		"title":             "Should the library stay open late?",
		"brief_description": "Extended hours proposal",
		"options":           []string{"Yes", "No"},
	}

	w := doJSONRequest(router, "POST", "/api/admin/polls", adminToken, pollData)

	assert.Equal(t, http.StatusCreated, w.Code)

	var createdPoll models.Poll
	err := json.Unmarshal(w.Body.Bytes(), &createdPoll)
	assert.NoError(t, err)
	assert.Equal(t, "Should the library stay open late?", createdPoll.Title)
	assert.Equal(t, models.PollStatusActive, createdPoll.Status)
	assert.Len(t, createdPoll.Options, 2)
	assert.Equal(t, "Yes", createdPoll.Options[0].Label)
	assert.Equal(t, "No", createdPoll.Options[1].Label)
	assert.NotZero(t, createdPoll.ID)
}

func TestCreatePoll_RequiresAdmin(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	_, userToken := createTestUser(t, db, "user@example.com", models.RoleUser)

	pollData := gin.H{
		"title":   "Sneaky poll",
		"options": []string{"Yes", "No"},
	}

	w := doJSONRequest(router, "POST", "/api/admin/polls", userToken, pollData)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// No token at all
	w = doJSONRequest(router, "POST", "/api/admin/polls", "", pollData)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreatePoll_DuplicateTitle(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	createTestPoll(t, db, "Unique Title", admin.ID, "Yes", "No")

	pollData := gin.H{
		"title":   "Unique Title",
		"options": []string{"Yes", "No"},
	}

	w := doJSONRequest(router, "POST", "/api/admin/polls", adminToken, pollData)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetPolls(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, _ := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	createTestPoll(t, db, "Poll 1", admin.ID, "Yes", "No")
	createTestPoll(t, db, "Poll 2", admin.ID, "A", "B", "C")

	w := doJSONRequest(router, "GET", "/api/polls", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var polls []models.Poll
	err := json.Unmarshal(w.Body.Bytes(), &polls)
	assert.NoError(t, err)
	assert.Len(t, polls, 2)
	// Listed in creation order
	assert.Equal(t, "Poll 1", polls[0].Title)
	assert.Equal(t, "Poll 2", polls[1].Title)
	assert.Len(t, polls[1].Options, 3)
}

func TestGetPoll_WithTally(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, _ := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	voter, _ := createTestUser(t, db, "voter@example.com", models.RoleUser)
	poll := createTestPoll(t, db, "Tally Poll", admin.ID, "Yes", "No")

	db.Create(&models.Vote{UserID: voter.ID, PollID: poll.ID, Option: "Yes"})

	w := doJSONRequest(router, "GET", fmt.Sprintf("/api/polls/%d", poll.ID), "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Poll  models.Poll `json:"poll"`
		Tally []struct {
			Option string `json:"option"`
			Count  int64  `json:"count"`
		} `json:"tally"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, poll.ID, resp.Poll.ID)
	// Zero-vote options still appear in the tally
	assert.Len(t, resp.Tally, 2)
	assert.Equal(t, "Yes", resp.Tally[0].Option)
	assert.Equal(t, int64(1), resp.Tally[0].Count)
	assert.Equal(t, "No", resp.Tally[1].Option)
	assert.Equal(t, int64(0), resp.Tally[1].Count)
}

func TestGetPoll_NotFound(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	w := doJSONRequest(router, "GET", "/api/polls/9999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var responseBody map[string]string
	err := json.Unmarshal(w.Body.Bytes(), &responseBody)
	assert.NoError(t, err)
	assert.Equal(t, "Poll not found", responseBody["error"])
}

func TestUpdatePollStatus(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	poll := createTestPoll(t, db, "Lifecycle Poll", admin.ID, "Yes", "No")
	url := fmt.Sprintf("/api/admin/polls/%d/status", poll.ID)

	// active -> approved
	w := doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Poll
	db.First(&updated, poll.ID)
	assert.Equal(t, models.PollStatusApproved, updated.Status)
}

func TestUpdatePollStatus_Idempotent(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	poll := createTestPoll(t, db, "Idempotent Poll", admin.ID, "Yes", "No")
	url := fmt.Sprintf("/api/admin/polls/%d/status", poll.ID)

	w := doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Repeating the same target status is a no-op, not an error
	w = doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.Poll
	db.First(&updated, poll.ID)
	assert.Equal(t, models.PollStatusApproved, updated.Status)
}

func TestUpdatePollStatus_TerminalConflict(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	poll := createTestPoll(t, db, "Final Poll", admin.ID, "Yes", "No")
	url := fmt.Sprintf("/api/admin/polls/%d/status", poll.ID)

	w := doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusOK, w.Code)

	// A finalized poll cannot move to a different terminal state
	w = doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var updated models.Poll
	db.First(&updated, poll.ID)
	assert.Equal(t, models.PollStatusApproved, updated.Status)
}

func TestUpdatePollStatus_InvalidStatus(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	poll := createTestPoll(t, db, "Invalid Status Poll", admin.ID, "Yes", "No")
	url := fmt.Sprintf("/api/admin/polls/%d/status", poll.ID)

	// Unknown status value
	w := doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "archived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Moving back to active is not a valid admin action
	w = doJSONRequest(router, "PUT", url, adminToken, gin.H{"status": "active"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePollStatus_NotFound(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	_, adminToken := createTestUser(t, db, "admin@example.com", models.RoleAdmin)

	w := doJSONRequest(router, "PUT", "/api/admin/polls/9999/status", adminToken, gin.H{"status": "approved"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}
