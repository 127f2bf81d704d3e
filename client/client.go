// Package client 提供访问后端API的Go客户端，
// 自动负责令牌注入与过期后的刷新重试。
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/yashyenugu/NeonGram/internal/model"
)

// APIError 表示服务端返回的非200响应
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// envelope 是服务端统一的响应包装
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client 持有令牌对，所有受保护请求带上访问令牌；
// 访问令牌被拒绝时用刷新令牌换新并重试一次
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// SetTokens 直接设置令牌对（例如从持久化会话恢复）
func (c *Client) SetTokens(accessToken, refreshToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
	c.refreshToken = refreshToken
}

// Tokens 返回当前令牌对
func (c *Client) Tokens() (string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

// Register 注册新用户
func (c *Client) Register(username, email, password, fname, lname string) error {
	body := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
		"fname":    fname,
		"lname":    lname,
	}
	_, err := c.doJSON(http.MethodPost, "/api/register", body, false)
	return err
}

// Login 登录并保存返回的令牌对
func (c *Client) Login(username, password string) error {
	data, err := c.doJSON(http.MethodPost, "/api/login", map[string]string{
		"username": username,
		"password": password,
	}, false)
	if err != nil {
		return err
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return fmt.Errorf("解析令牌失败: %w", err)
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()
	return nil
}

// Logout 撤销刷新令牌并清空本地令牌对
func (c *Client) Logout() error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	if refresh != "" {
		if _, err := c.doJSON(http.MethodPost, "/api/logout", map[string]string{
			"refreshToken": refresh,
		}, false); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.accessToken = ""
	c.refreshToken = ""
	c.mu.Unlock()
	return nil
}

// Verify 返回当前登录用户的资料
func (c *Client) Verify() (*model.User, error) {
	data, err := c.doJSON(http.MethodPost, "/api/verify", nil, true)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetDetails 按用户名查询资料
func (c *Client) GetDetails(username string) (*model.User, error) {
	data, err := c.doJSON(http.MethodGet, "/api/details/"+url.PathEscape(username), nil, true)
	if err != nil {
		return nil, err
	}
	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Search 按用户名子串搜索用户
func (c *Client) Search(pattern string) ([]*model.User, error) {
	data, err := c.doJSON(http.MethodGet, "/api/search?username="+url.QueryEscape(pattern), nil, true)
	if err != nil {
		return nil, err
	}
	var users []*model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Follow 关注用户
func (c *Client) Follow(userID int) error {
	_, err := c.doJSON(http.MethodPatch, fmt.Sprintf("/api/follow/%d", userID), nil, true)
	return err
}

// Unfollow 取消关注
func (c *Client) Unfollow(userID int) error {
	_, err := c.doJSON(http.MethodPatch, fmt.Sprintf("/api/unfollow/%d", userID), nil, true)
	return err
}

// Feed 获取全站时间线一页，lastTime 为 nil 表示第一页
func (c *Client) Feed(lastTime *time.Time) ([]*model.Post, error) {
	return c.fetchPosts("/api/posts", lastTime)
}

// FromFollowing 获取关注时间线一页
func (c *Client) FromFollowing(lastTime *time.Time) ([]*model.Post, error) {
	return c.fetchPosts("/api/posts/fromFollowing", lastTime)
}

// UserPosts 获取指定用户的全部帖子
func (c *Client) UserPosts(username string) ([]*model.Post, error) {
	data, err := c.doJSON(http.MethodGet, "/api/posts/user/"+url.PathEscape(username), nil, true)
	if err != nil {
		return nil, err
	}
	var posts []*model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// React 点赞或点踩，kind 取 model.ReactionLike / model.ReactionDislike
func (c *Client) React(postID int, kind string) (*model.Post, error) {
	path := fmt.Sprintf("/api/posts/%d/%s", postID, kind)
	data, err := c.doJSON(http.MethodPost, path, nil, true)
	if err != nil {
		return nil, err
	}
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// RemoveReaction 撤销反应，reaction 取 "likes" 或 "dislikes"
func (c *Client) RemoveReaction(postID int, reaction string) (*model.Post, error) {
	path := fmt.Sprintf("/api/posts/%d/removeReaction/%s", postID, reaction)
	data, err := c.doJSON(http.MethodPost, path, nil, true)
	if err != nil {
		return nil, err
	}
	var post model.Post
	if err := json.Unmarshal(data, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost 删除自己的帖子
func (c *Client) DeletePost(postID int) error {
	_, err := c.doJSON(http.MethodDelete, fmt.Sprintf("/api/posts/%d", postID), nil, true)
	return err
}

// AddComment 在帖子下评论
func (c *Client) AddComment(postID int, content string) (*model.Comment, error) {
	data, err := c.doJSON(http.MethodPost, fmt.Sprintf("/api/comment/add/%d", postID),
		map[string]string{"content": content}, true)
	if err != nil {
		return nil, err
	}
	var comment model.Comment
	if err := json.Unmarshal(data, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetComments 获取帖子的全部评论
func (c *Client) GetComments(postID int) ([]*model.Comment, error) {
	data, err := c.doJSON(http.MethodGet, fmt.Sprintf("/api/comment/%d", postID), nil, true)
	if err != nil {
		return nil, err
	}
	var comments []*model.Comment
	if err := json.Unmarshal(data, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) fetchPosts(path string, lastTime *time.Time) ([]*model.Post, error) {
	if lastTime != nil {
		path += "?lastTime=" + url.QueryEscape(lastTime.Format(time.RFC3339Nano))
	}
	data, err := c.doJSON(http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	var posts []*model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// doJSON 发送请求。authed 请求在收到 401/403 时用刷新令牌
// 换取新的访问令牌，并重试一次；刷新失败则返回原始错误
func (c *Client) doJSON(method, path string, body interface{}, authed bool) (json.RawMessage, error) {
	data, apiErr, err := c.send(method, path, body, authed)
	if err != nil {
		return nil, err
	}
	if apiErr == nil {
		return data, nil
	}

	if !authed || (apiErr.StatusCode != http.StatusUnauthorized && apiErr.StatusCode != http.StatusForbidden) {
		return nil, apiErr
	}

	if refreshErr := c.refresh(); refreshErr != nil {
		return nil, apiErr
	}

	data, apiErr, err = c.send(method, path, body, authed)
	if err != nil {
		return nil, err
	}
	if apiErr != nil {
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) send(method, path string, body interface{}, authed bool) (json.RawMessage, *APIError, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		c.mu.Lock()
		token := c.accessToken
		c.mu.Unlock()
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)
		return nil, apiErr, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, fmt.Errorf("解析响应失败: %w", err)
	}
	return env.Data, nil, nil
}

// refresh 用刷新令牌换取新的访问令牌
func (c *Client) refresh() error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	if refresh == "" {
		return fmt.Errorf("没有可用的刷新令牌")
	}

	data, apiErr, err := c.send(http.MethodPost, "/api/token",
		map[string]string{"refreshToken": refresh}, false)
	if err != nil {
		return err
	}
	if apiErr != nil {
		return apiErr
	}

	var tokens struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(data, &tokens); err != nil {
		return err
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.mu.Unlock()
	return nil
}
