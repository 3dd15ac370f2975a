package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arnavshah/crew-planner-api/pkg/auth"
	"github.com/arnavshah/crew-planner-api/pkg/database"
	"github.com/arnavshah/crew-planner-api/pkg/models"
	"github.com/arnavshah/crew-planner-api/pkg/planner"
	"github.com/arnavshah/crew-planner-api/pkg/provider"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*Handler, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.SetSecrets("test-jwt", "test-master")

	db, err := database.Open("", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	h := &Handler{
		DB:       db,
		Assigner: provider.NewAssigner(nil, time.Second, zap.NewNop()),
		Logger:   zap.NewNop(),
	}
	return h, NewRouter(h)
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func scenarioRequest() models.AssignRequest {
	return models.AssignRequest{
		Participants: []models.Participant{
			{ID: "v1", Name: "Vera", Role: models.RoleVolunteer, Rank: 5},
			{ID: "m1", Name: "Mo", Role: models.RoleMember, Rank: 2},
			{ID: "m2", Name: "Lin", Role: models.RoleMember, Rank: 3},
			{ID: "m3", Name: "Ana", Role: models.RoleMember, Rank: 2},
		},
		Inventory:       models.BoatInventory{"double": 2},
		BoatDefinitions: []models.BoatDefinition{{ID: "double", Label: "Double", Capacity: 2}},
	}
}

func TestAssignJSON(t *testing.T) {
	h, r := newTestServer(t)
	key := auth.GenerateHMACKey("club-a")

	w := doJSON(r, http.MethodPost, "/api/assign", key, scenarioRequest())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AssignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, provider.StrategyEngine, resp.Strategy)
	require.Len(t, resp.Teams, 2)
	assert.Empty(t, resp.UnassignedIDs)
	assert.Equal(t, 2, resp.BoatsUsed["double"])

	var usage database.APIUsage
	require.NoError(t, h.DB.First(&usage).Error)
	assert.Equal(t, 1, usage.RequestCount)
	assert.Equal(t, 4, usage.TotalParticipants)
	assert.Equal(t, 2, usage.TotalTeams)

	w = doJSON(r, http.MethodPost, "/api/assign", key, scenarioRequest())
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, h.DB.First(&usage).Error)
	assert.Equal(t, 2, usage.RequestCount)
	assert.Equal(t, 8, usage.TotalParticipants)
}

func TestAssignJSON_UsesStoredFleet(t *testing.T) {
	h, r := newTestServer(t)
	require.NoError(t, h.DB.Create(&database.Boat{Slug: "sonar", Capacity: 5, MinSkippers: 1, IsStable: true, Available: 1}).Error)

	req := scenarioRequest()
	req.BoatDefinitions = nil
	req.Inventory = nil

	w := doJSON(r, http.MethodPost, "/api/assign", auth.GenerateHMACKey("club-a"), req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.AssignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Teams, 1)
	assert.Equal(t, "sonar", resp.Teams[0].BoatType)
	assert.Len(t, resp.Teams[0].Members, 4)
	assert.Contains(t, resp.Teams[0].Warnings, planner.WarnMissingSkippers)
}

func TestAssignJSON_Rejections(t *testing.T) {
	_, r := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/api/assign", "", scenarioRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/assign", "club-a.forged", scenarioRequest())
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := scenarioRequest()
	req.Participants = append(req.Participants, models.Participant{ID: "m1"})
	w = doJSON(r, http.MethodPost, "/api/assign", auth.GenerateHMACKey("club-a"), req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssignJSON_EmptyRoster(t *testing.T) {
	_, r := newTestServer(t)
	req := scenarioRequest()
	req.Participants = nil

	w := doJSON(r, http.MethodPost, "/api/assign", auth.GenerateHMACKey("club-a"), req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.AssignResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Teams)
}

func TestAssignCSV(t *testing.T) {
	_, r := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	pf, _ := mw.CreateFormFile("participants_file", "people.csv")
	pf.Write([]byte("id,name,role,rank,must_pair_with,cannot_pair_with\n" +
		"a,Ada,volunteer,5,,\n" +
		"b,Bo,member,2,c,\n" +
		"c,Cy,member,3,,a\n"))
	bf, _ := mw.CreateFormFile("boats_file", "boats.csv")
	bf.Write([]byte("id,label,capacity,is_stable,min_skippers,available\n" +
		"double,Double,2,false,0,2\n" +
		"single,Single,1,true,0,0\n"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/assign/csv", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+auth.GenerateHMACKey("club-a"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		CSV        string   `json:"csv"`
		Unassigned []string `json:"unassigned_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	lines := strings.Split(strings.TrimSpace(resp.CSV), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "team_id,boat_type"))

	// b and c must stay together and c refuses a, so a takes a double alone
	assert.Empty(t, resp.Unassigned)
	assert.Contains(t, resp.CSV, ",double,a,Ada,VOLUNTEER,"+planner.WarnLoneRower)
	assert.Contains(t, resp.CSV, ",double,b,")
	assert.Contains(t, resp.CSV, ",double,c,")
}

func TestAssignCSV_MissingFile(t *testing.T) {
	_, r := newTestServer(t)
	w := doJSON(r, http.MethodPost, "/api/assign/csv", auth.GenerateHMACKey("club-a"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func adminToken(t *testing.T, h *Handler, r *gin.Engine) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, h.DB.Create(&database.MasterUser{Username: "coach", PasswordHash: string(hash)}).Error)

	w := doJSON(r, http.MethodPost, "/admin/login", "", gin.H{"username": "coach", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestAdminInterface(t *testing.T) {
	h, r := newTestServer(t)

	w := doJSON(r, http.MethodGet, "/admin", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	// Serving the page never writes to the user table
	var count int64
	require.NoError(t, h.DB.Model(&database.MasterUser{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdminBoats(t *testing.T) {
	h, r := newTestServer(t)
	token := adminToken(t, h, r)

	w := doJSON(r, http.MethodPut, "/admin/boats/quad", token, gin.H{"capacity": 4, "available": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSON(r, http.MethodPut, "/admin/boats/quad", token, gin.H{"capacity": 4, "available": 1, "label": "Quad"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(r, http.MethodPut, "/admin/boats/broken", token, gin.H{"capacity": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	defs, inv, err := database.LoadFleet(h.DB)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Quad", defs[0].Label)
	assert.Equal(t, 1, inv["quad"])

	w = doJSON(r, http.MethodDelete, "/admin/boats/quad", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodDelete, "/admin/boats/quad", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/admin/boats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminKeys(t *testing.T) {
	h, r := newTestServer(t)
	token := adminToken(t, h, r)

	w := doJSON(r, http.MethodPost, "/admin/keys", token, gin.H{"name": "harbour"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var created struct {
		Key string `json:"key"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(r, http.MethodPost, "/api/assign", created.Key, scenarioRequest())
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/usage", created.Key, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"requests":1`)

	w = doJSON(r, http.MethodGet, "/admin/keys", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.Key)
	assert.Contains(t, w.Body.String(), "harbour")
}

func TestValidateInput(t *testing.T) {
	_, r := newTestServer(t)

	req := scenarioRequest()
	req.Participants[1].MustPairWith = []string{"ghost"}
	req.BoatDefinitions = append(req.BoatDefinitions, models.BoatDefinition{ID: "bad", Capacity: 0})
	req.Inventory["yacht"] = 1

	w := doJSON(r, http.MethodPost, "/api/validate", auth.GenerateHMACKey("club-a"), req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Valid            bool                    `json:"valid"`
		Issues           []planner.Issue         `json:"issues"`
		IgnoredBoats     []models.BoatDefinition `json:"ignored_boats"`
		UnknownInventory []string                `json:"unknown_inventory"`
		Stats            map[string]int          `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	require.Len(t, resp.Issues, 1)
	assert.Equal(t, planner.IssueDanglingRef, resp.Issues[0].Kind)
	assert.Len(t, resp.IgnoredBoats, 1)
	assert.Equal(t, []string{"yacht"}, resp.UnknownInventory)
	assert.Equal(t, 4, resp.Stats["seats_available"])
}
