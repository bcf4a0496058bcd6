package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.IssueToken(42)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	userID, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestParseTokenRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	expired := NewManager("test-secret", -time.Minute)
	expiredToken, err := expired.IssueToken(7)
	if err != nil {
		t.Fatal(err)
	}

	other := NewManager("other-secret", time.Hour)
	foreignToken, err := other.IssueToken(7)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expiredToken},
		{"wrong secret", foreignToken},
		{"garbage", "not.a.token"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.ParseToken(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func testRouter(m *Manager) *gin.Engine {
	r := gin.New()
	r.GET("/private", m.Required(), func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})
	r.GET("/open", m.Optional(), func(c *gin.Context) {
		if id, ok := UserID(c); ok {
			c.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": nil})
	})
	return r
}

func TestRequiredMiddleware(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	r := testRouter(m)

	token, err := m.IssueToken(9)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		setAuth    func(*http.Request)
		wantStatus int
	}{
		{
			name:       "bearer header",
			setAuth:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "cookie",
			setAuth:    func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "auth_token", Value: token}) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "no credentials",
			setAuth:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bad token",
			setAuth:    func(req *http.Request) { req.Header.Set("Authorization", "Bearer junk") },
			wantStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			tt.setAuth(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestOptionalMiddleware(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	r := testRouter(m)

	token, err := m.IssueToken(3)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != `{"user_id":3}` {
		t.Errorf("body = %s", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	if got := w.Body.String(); got != `{"user_id":null}` {
		t.Errorf("anonymous body = %s", got)
	}
}
