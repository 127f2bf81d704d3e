package client

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": "",
		"data":    data,
	})
}

// TestRefreshRetryOnce 测试访问令牌过期时自动刷新并重试一次
func TestRefreshRetryOnce(t *testing.T) {
	var refreshed int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "refresh-1", body["refreshToken"])
		atomic.AddInt32(&refreshed, 1)
		writeEnvelope(w, http.StatusOK, map[string]string{"accessToken": "access-2"})
	})
	mux.HandleFunc("/api/verify", func(w http.ResponseWriter, r *http.Request) {
		switch r.Header.Get("Authorization") {
		case "Bearer access-2":
			writeEnvelope(w, http.StatusOK, map[string]interface{}{"id": 1, "username": "alice"})
		default:
			w.WriteHeader(http.StatusForbidden)
		}
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("expired-access", "refresh-1")

	user, err := c.Verify()
	assert.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshed))

	// 新令牌被保存，后续请求不再刷新
	_, err = c.Verify()
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshed))
}

// TestRefreshFailureSurfacesOriginalError 测试刷新失败时返回原始拒绝
func TestRefreshFailureSurfacesOriginalError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 2006, "message": "刷新令牌已撤销"})
	})
	mux.HandleFunc("/api/verify", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 2003, "message": "无效令牌"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("expired-access", "revoked-refresh")

	_, err := c.Verify()
	assert.Error(t, err)
	apiErr, ok := err.(*APIError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

// TestLoginStoresTokens 测试登录保存令牌对
func TestLoginStoresTokens(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]string{
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
		})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	assert.NoError(t, c.Login("alice", "password"))

	access, refresh := c.Tokens()
	assert.Equal(t, "access-1", access)
	assert.Equal(t, "refresh-1", refresh)
}

// TestUnauthenticatedRequestNotRetried 测试公开请求失败不会触发刷新
func TestUnauthenticatedRequestNotRetried(t *testing.T) {
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{"code": 4002, "message": "User exists"})
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL)
	err := c.Register("alice", "a@b.com", "password", "A", "B")
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
