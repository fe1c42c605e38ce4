package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/binary-blogs/binary-blogs/internal/infra/persistence/snapshot"
	"github.com/binary-blogs/binary-blogs/pkg/config"
	"github.com/binary-blogs/binary-blogs/pkg/service/utility"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testClient struct {
	t      *testing.T
	engine *gin.Engine
	token  string
}

func newTestApp(t *testing.T, overrides map[string]interface{}) (*App, *testClient) {
	t.Helper()
	values := map[string]interface{}{
		config.KeyServerDebug:        true,
		config.KeyBackupDir:          t.TempDir(),
		config.KeyJWTSecret:          "test-secret",
		config.KeyRateLimitPerMinute: 0,
	}
	for k, v := range overrides {
		values[k] = v
	}

	cache := utility.NewMemoryCacheService()
	t.Cleanup(func() { cache.Close() })
	app, err := NewAppWithRepository(context.Background(), config.NewFromMap(values), snapshot.NewKVRepository(cache))
	if err != nil {
		t.Fatalf("NewAppWithRepository() error = %v", err)
	}
	t.Cleanup(app.Close)
	return app, &testClient{t: t, engine: app.Engine()}
}

func (c *testClient) do(method, path string, body interface{}) (int, apiResponse) {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.engine.ServeHTTP(w, req)

	var resp apiResponse
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			c.t.Fatalf("%s %s 返回非法 JSON: %s", method, path, w.Body.String())
		}
	}
	return w.Code, resp
}

func (c *testClient) login() {
	c.t.Helper()
	code, resp := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.c", "password": "x"})
	if code != http.StatusOK {
		c.t.Fatalf("登录失败: %d %s", code, resp.Message)
	}
	var data struct {
		AccessToken string `json:"accessToken"`
	}
	json.Unmarshal(resp.Data, &data)
	c.token = data.AccessToken
}

func TestDemoDataSeeded(t *testing.T) {
	_, client := newTestApp(t, nil)

	code, resp := client.do(http.MethodGet, "/api/blogs?pageSize=100", nil)
	if code != http.StatusOK {
		t.Fatalf("GET /api/blogs = %d", code)
	}
	var list struct {
		Total int `json:"total"`
	}
	json.Unmarshal(resp.Data, &list)
	if list.Total != 6 {
		t.Errorf("演示数据数量 = %d, want 6", list.Total)
	}

	code, resp = client.do(http.MethodGet, "/api/blogs/slug/getting-started-with-go-modules", nil)
	if code != http.StatusOK {
		t.Fatalf("按 slug 获取失败: %d", code)
	}
	var detail struct {
		ID      string            `json:"id"`
		HTML    string            `json:"html"`
		Outline []json.RawMessage `json:"outline"`
	}
	json.Unmarshal(resp.Data, &detail)
	if detail.ID != "demo-getting-started-with-go" || detail.HTML == "" {
		t.Errorf("详情不正确: %+v", detail)
	}
}

func TestBlogLifecycleOverHTTP(t *testing.T) {
	_, client := newTestApp(t, map[string]interface{}{config.KeyBlogSeedDemo: false})

	newPost := map[string]interface{}{"title": "Hello HTTP", "content": "## Part one\n\nbody", "tags": []string{"go"}}
	if code, _ := client.do(http.MethodPost, "/api/blogs", newPost); code != http.StatusUnauthorized {
		t.Fatalf("未登录创建文章应返回 401, got %d", code)
	}

	client.login()
	if code, _ := client.do(http.MethodPost, "/api/blogs", map[string]interface{}{"title": "No tags", "content": "x"}); code != http.StatusBadRequest {
		t.Errorf("缺少标签应返回 400, got %d", code)
	}

	code, resp := client.do(http.MethodPost, "/api/blogs", newPost)
	if code != http.StatusCreated {
		t.Fatalf("创建文章失败: %d %s", code, resp.Message)
	}
	var created struct {
		ID      string `json:"id"`
		Slug    string `json:"slug"`
		Excerpt string `json:"excerpt"`
		Author  struct {
			ID string `json:"id"`
		} `json:"author"`
	}
	json.Unmarshal(resp.Data, &created)
	if created.Slug != "hello-http" || created.Author.ID != "u-1001" || created.Excerpt == "" {
		t.Fatalf("创建结果不正确: %+v", created)
	}

	steps := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
	}{
		{name: "点赞", method: http.MethodPost, path: "/api/blogs/" + created.ID + "/like", wantCode: http.StatusOK},
		{name: "收藏", method: http.MethodPost, path: "/api/blogs/" + created.ID + "/bookmark", wantCode: http.StatusOK},
		{name: "浏览", method: http.MethodPost, path: "/api/blogs/" + created.ID + "/view", wantCode: http.StatusOK},
		{name: "评论", method: http.MethodPost, path: "/api/blogs/" + created.ID + "/comments", body: map[string]string{"content": "nice"}, wantCode: http.StatusCreated},
		{name: "空评论", method: http.MethodPost, path: "/api/blogs/" + created.ID + "/comments", body: map[string]string{}, wantCode: http.StatusBadRequest},
		{name: "更新", method: http.MethodPut, path: "/api/blogs/" + created.ID, body: map[string]string{"title": "Renamed"}, wantCode: http.StatusOK},
		{name: "未知文章点赞", method: http.MethodPost, path: "/api/blogs/missing/like", wantCode: http.StatusNotFound},
		{name: "未知文章", method: http.MethodGet, path: "/api/blogs/missing", wantCode: http.StatusNotFound},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			if code, resp := client.do(step.method, step.path, step.body); code != step.wantCode {
				t.Errorf("%s %s = %d (%s), want %d", step.method, step.path, code, resp.Message, step.wantCode)
			}
		})
	}

	_, resp = client.do(http.MethodGet, "/api/blogs/"+created.ID+"/liked", nil)
	if !strings.Contains(string(resp.Data), `"liked":true`) {
		t.Errorf("liked 查询结果 = %s", resp.Data)
	}
	_, resp = client.do(http.MethodGet, "/api/bookmarks", nil)
	if !strings.Contains(string(resp.Data), created.ID) {
		t.Errorf("收藏列表应包含新文章: %s", resp.Data)
	}
	_, resp = client.do(http.MethodGet, "/api/blogs/"+created.ID, nil)
	if !strings.Contains(string(resp.Data), `"slug":"hello-http"`) || !strings.Contains(string(resp.Data), `"title":"Renamed"`) {
		t.Errorf("改标题不应改变 slug: %s", resp.Data)
	}

	code, _ = client.do(http.MethodDelete, "/api/blogs/"+created.ID, nil)
	if code != http.StatusOK {
		t.Fatalf("删除失败: %d", code)
	}
	if code, _ := client.do(http.MethodGet, "/api/blogs/"+created.ID, nil); code != http.StatusNotFound {
		t.Errorf("删除后应返回 404, got %d", code)
	}
}

func TestOnlyAuthorCanModify(t *testing.T) {
	_, client := newTestApp(t, nil)
	client.login()

	// 演示文章 demo-css-custom-properties 的作者是 u-2002
	if code, _ := client.do(http.MethodPut, "/api/blogs/demo-css-custom-properties", map[string]string{"title": "x"}); code != http.StatusForbidden {
		t.Errorf("修改他人文章应返回 403, got %d", code)
	}
	if code, _ := client.do(http.MethodDelete, "/api/blogs/demo-css-custom-properties", nil); code != http.StatusForbidden {
		t.Errorf("删除他人文章应返回 403, got %d", code)
	}
}

func TestSessionEndsTokens(t *testing.T) {
	_, client := newTestApp(t, nil)
	client.login()

	if code, _ := client.do(http.MethodGet, "/api/auth/me", nil); code != http.StatusOK {
		t.Fatalf("登录后 /me = %d", code)
	}
	code, resp := client.do(http.MethodPut, "/api/auth/me", map[string]string{"name": "Alex C."})
	if code != http.StatusOK || !strings.Contains(string(resp.Data), "Alex C.") {
		t.Errorf("更新资料失败: %d %s", code, resp.Data)
	}
	if code, _ := client.do(http.MethodPut, "/api/auth/analytics", map[string]int{"visits": 3}); code != http.StatusOK {
		t.Errorf("写入统计失败: %d", code)
	}
	code, resp = client.do(http.MethodGet, "/api/dashboard", nil)
	if code != http.StatusOK || !strings.Contains(string(resp.Data), `"postCount":3`) {
		t.Errorf("仪表盘 = %d %s", code, resp.Data)
	}

	if code, _ := client.do(http.MethodPost, "/api/auth/logout", nil); code != http.StatusOK {
		t.Fatalf("登出失败: %d", code)
	}
	if code, _ := client.do(http.MethodGet, "/api/auth/me", nil); code != http.StatusUnauthorized {
		t.Errorf("登出后旧令牌应返回 401, got %d", code)
	}
}

func TestThemeEndpoints(t *testing.T) {
	_, client := newTestApp(t, nil)

	testCases := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		wantCode int
	}{
		{name: "读取", method: http.MethodGet, path: "/api/theme", wantCode: http.StatusOK},
		{name: "配色列表", method: http.MethodGet, path: "/api/theme/palette", wantCode: http.StatusOK},
		{name: "切换", method: http.MethodPost, path: "/api/theme/toggle", wantCode: http.StatusOK},
		{name: "设置模式", method: http.MethodPut, path: "/api/theme/mode", body: map[string]string{"theme": "dark"}, wantCode: http.StatusOK},
		{name: "非法模式", method: http.MethodPut, path: "/api/theme/mode", body: map[string]string{"theme": "sepia"}, wantCode: http.StatusBadRequest},
		{name: "未知配色回退", method: http.MethodPut, path: "/api/theme/color", body: map[string]string{"name": "Nope"}, wantCode: http.StatusOK},
		{name: "非法字体", method: http.MethodPut, path: "/api/theme/font", body: map[string]string{"fontFamily": "comic"}, wantCode: http.StatusBadRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if code, resp := client.do(tc.method, tc.path, tc.body); code != tc.wantCode {
				t.Errorf("%s %s = %d (%s), want %d", tc.method, tc.path, code, resp.Message, tc.wantCode)
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/theme/css", nil)
	w := httptest.NewRecorder()
	client.engine.ServeHTTP(w, req)
	if !strings.HasPrefix(w.Body.String(), ":root{") || !strings.Contains(w.Body.String(), "color-scheme:dark") {
		t.Errorf("CSS = %s", w.Body.String())
	}
}

func TestRenderAndMetrics(t *testing.T) {
	_, client := newTestApp(t, nil)

	code, resp := client.do(http.MethodPost, "/api/render", map[string]string{"content": "# Title\n\n<script>alert(1)</script>"})
	if code != http.StatusOK {
		t.Fatalf("渲染失败: %d", code)
	}
	var rendered struct {
		HTML string `json:"html"`
	}
	json.Unmarshal(resp.Data, &rendered)
	if !strings.Contains(rendered.HTML, "Title") || strings.Contains(rendered.HTML, "<script>") {
		t.Errorf("渲染结果不正确: %s", rendered.HTML)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	client.engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "binaryblogs_http_requests_total") {
		t.Errorf("/metrics 缺少请求计数: %d", w.Code)
	}
}
