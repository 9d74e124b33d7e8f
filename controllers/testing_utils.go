package controllers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"time"

	"tradecal/middleware"
	"tradecal/services"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// testAPI bundles a fully wired router with an authenticated test user.
// Returns nil if setup fails (tests should fail fast).
type testAPI struct {
	router *gin.Engine
	db     *sqlx.DB
	userID int64
	token  string
}

func newTestAPI() *testAPI {
	gin.SetMode(gin.TestMode)

	db := services.TestDB()
	if db == nil {
		return nil
	}

	userID, err := services.TestUser(db, "trader@example.com")
	if err != nil {
		db.Close()
		return nil
	}

	jwtMiddleware := middleware.NewJWTMiddleware([]byte("test-secret"), time.Hour)
	token, err := jwtMiddleware.GenerateToken(userID, "trader@example.com", "tester")
	if err != nil {
		db.Close()
		return nil
	}

	router := gin.New()
	NewTradeController(services.NewTradeService(db), jwtMiddleware).RegisterRoutes(router)
	NewEntryController(services.NewEntryService(db), jwtMiddleware).RegisterRoutes(router)

	return &testAPI{
		router: router,
		db:     db,
		userID: userID,
		token:  token,
	}
}

// Close releases the underlying database
func (a *testAPI) Close() {
	a.db.Close()
}

// request performs an HTTP request against the wired router
func (a *testAPI) request(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a response body into a generic map
func decode(w *httptest.ResponseRecorder) map[string]interface{} {
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		return nil
	}
	return out
}
