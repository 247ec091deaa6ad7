package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"evote-backend/database"
	"evote-backend/models"
)

func TestGetResults(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, _ := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	_, tokenA := createTestUser(t, db, "usera@example.com", models.RoleUser)
	_, tokenB := createTestUser(t, db, "userb@example.com", models.RoleUser)

	poll1 := createTestPoll(t, db, "Results Poll 1", admin.ID, "Yes", "No")
	poll2 := createTestPoll(t, db, "Results Poll 2", admin.ID, "Yes", "No")

	// User A votes Yes, user B votes No on the first poll
	url1 := fmt.Sprintf("/api/polls/%d/vote", poll1.ID)
	w := doJSONRequest(router, "POST", url1, tokenA, gin.H{"option": "Yes"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = doJSONRequest(router, "POST", url1, tokenB, gin.H{"option": "No"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Only user A votes on the second poll
	url2 := fmt.Sprintf("/api/polls/%d/vote", poll2.ID)
	w = doJSONRequest(router, "POST", url2, tokenA, gin.H{"option": "Yes"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSONRequest(router, "GET", "/api/results", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var results []database.PollResult
	err := json.Unmarshal(w.Body.Bytes(), &results)
	assert.NoError(t, err)
	assert.Len(t, results, 2)

	// Ordered by poll creation time
	assert.Equal(t, poll1.ID, results[0].PollID)
	assert.Equal(t, "Results Poll 1", results[0].Title)
	assert.Equal(t, int64(2), results[0].TotalVotes)
	assert.Equal(t, int64(1), results[0].YesVotes)
	assert.Equal(t, int64(1), results[0].NoVotes)

	assert.Equal(t, poll2.ID, results[1].PollID)
	assert.Equal(t, int64(1), results[1].TotalVotes)
	assert.Equal(t, int64(1), results[1].YesVotes)
	assert.Equal(t, int64(0), results[1].NoVotes)
}

func TestGetResults_Empty(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	w := doJSONRequest(router, "GET", "/api/results", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var results []database.PollResult
	err := json.Unmarshal(w.Body.Bytes(), &results)
	assert.NoError(t, err)
	assert.Len(t, results, 0)
}

func TestGetResults_CacheInvalidatedByVote(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, _ := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	_, voterToken := createTestUser(t, db, "voter@example.com", models.RoleUser)
	poll := createTestPoll(t, db, "Cache Poll", admin.ID, "Yes", "No")

	// Prime the cache with the empty result set
	w := doJSONRequest(router, "GET", "/api/results", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	url := fmt.Sprintf("/api/polls/%d/vote", poll.ID)
	w = doJSONRequest(router, "POST", url, voterToken, gin.H{"option": "Yes"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// The vote must be visible on the next read
	w = doJSONRequest(router, "GET", "/api/results", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var results []database.PollResult
	err := json.Unmarshal(w.Body.Bytes(), &results)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, int64(1), results[0].TotalVotes)
}

func TestGetPollResults_GenericOptions(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	ClearTables(db)

	admin, _ := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	voter, _ := createTestUser(t, db, "voter@example.com", models.RoleUser)

	// Tallying is not limited to binary Yes/No polls
	poll := createTestPoll(t, db, "Lunch Poll", admin.ID, "Pizza", "Sushi", "Salad")
	db.Create(&models.Vote{UserID: voter.ID, PollID: poll.ID, Option: "Sushi"})

	w := doJSONRequest(router, "GET", fmt.Sprintf("/api/polls/%d/results", poll.ID), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var tally []database.OptionCount
	err := json.Unmarshal(w.Body.Bytes(), &tally)
	assert.NoError(t, err)
	assert.Len(t, tally, 3)
	assert.Equal(t, "Pizza", tally[0].Option)
	assert.Equal(t, int64(0), tally[0].Count)
	assert.Equal(t, "Sushi", tally[1].Option)
	assert.Equal(t, int64(1), tally[1].Count)
	assert.Equal(t, "Salad", tally[2].Option)
	assert.Equal(t, int64(0), tally[2].Count)
}
