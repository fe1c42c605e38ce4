/*
 * @Description: 文章快照的持久化结构与历史版本迁移
 */
package blog

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/binary-blogs/binary-blogs/pkg/domain/model"
	"github.com/binary-blogs/binary-blogs/pkg/service/snapshot"
)

// stateVersion 当前快照版本
const stateVersion = 1

// persistedState 是 v1 快照中的 state
type persistedState struct {
	Blogs     []model.Blog `json:"blogs"`
	Bookmarks []string     `json:"bookmarks"`
	Likes     []string     `json:"likes"`
	Seq       uint64       `json:"seq"`
	Seeded    bool         `json:"seeded"`
}

// legacyState 是 v0 的形态：收藏状态同时存在于文章字段和 bookmarkedBlogs 中，
// 日期可能是字符串也可能是数字。
type legacyState struct {
	Blogs           []map[string]json.RawMessage `json:"blogs"`
	BookmarkedBlogs []string                     `json:"bookmarkedBlogs"`
	LikedBlogs      []string                     `json:"likedBlogs"`
}

func newCodec() *snapshot.Codec {
	return snapshot.NewCodec(stateVersion, map[int]snapshot.Migration{
		0: migrateV0ToV1,
	})
}

// migrateV0ToV1 合并两处收藏来源并把日期统一成毫秒时间戳
func migrateV0ToV1(raw json.RawMessage) (json.RawMessage, error) {
	var legacy legacyState
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("解析 v0 文章快照失败: %w", err)
	}

	bookmarks := make(map[string]struct{}, len(legacy.BookmarkedBlogs))
	for _, id := range legacy.BookmarkedBlogs {
		bookmarks[id] = struct{}{}
	}

	next := persistedState{Blogs: make([]model.Blog, 0, len(legacy.Blogs))}
	for i, fields := range legacy.Blogs {
		var flagged bool
		if rawFlag, ok := fields["bookmarked"]; ok {
			var err error
			if flagged, err = legacyFlag(rawFlag); err != nil {
				log.Printf("[BlogStore] 第 %d 篇旧文章的 bookmarked 字段无法解析 (%s): %v", i, rawFlag, err)
			}
			delete(fields, "bookmarked")
		}
		for _, key := range []string{"createdAt", "updatedAt"} {
			if rawDate, ok := fields[key]; ok {
				fields[key] = json.RawMessage(fmt.Sprintf("%d", legacyMillis(rawDate)))
			}
		}
		if rawComments, ok := fields["comments"]; ok {
			fields["comments"] = normalizeLegacyComments(rawComments)
		}

		encoded, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		var blog model.Blog
		if err := json.Unmarshal(encoded, &blog); err != nil {
			return nil, fmt.Errorf("解析第 %d 篇旧文章失败: %w", i, err)
		}
		if flagged {
			bookmarks[blog.ID] = struct{}{}
		}
		next.Blogs = append(next.Blogs, blog)
	}

	next.Bookmarks = sortedKeys(bookmarks)
	next.Likes = dedupe(legacy.LikedBlogs)
	next.Seq = uint64(len(next.Blogs))
	next.Seeded = len(next.Blogs) > 0
	return json.Marshal(next)
}

// legacyFlag 解析旧快照中的布尔标记，兼容 "true" 这样的字符串写法
func legacyFlag(raw json.RawMessage) (bool, error) {
	var flag bool
	if err := json.Unmarshal(raw, &flag); err == nil {
		return flag, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return false, fmt.Errorf("既不是布尔值也不是字符串")
	}
	return strconv.ParseBool(strings.TrimSpace(text))
}

func decodeComments(raw json.RawMessage) []map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var out []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// normalizeLegacyComments 将评论的 createdAt 统一为毫秒
func normalizeLegacyComments(raw json.RawMessage) json.RawMessage {
	comments := decodeComments(raw)
	if comments == nil {
		return json.RawMessage("[]")
	}
	for _, c := range comments {
		if rawDate, ok := c["createdAt"]; ok {
			c["createdAt"] = json.RawMessage(fmt.Sprintf("%d", legacyMillis(rawDate)))
		}
	}
	out, err := json.Marshal(comments)
	if err != nil {
		return json.RawMessage("[]")
	}
	return out
}

// legacyMillis 兼容数字和日期字符串两种写法，无法识别时返回 0
func legacyMillis(raw json.RawMessage) int64 {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int64(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, ok := parseDate(s); ok {
			return t.UnixMilli()
		}
	}
	return 0
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDate 解析演示数据和旧快照里出现过的日期格式
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func dedupe(ids []string) []string {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return sortedKeys(set)
}

// SnapshotKey 返回博客快照键
func (s *Store) SnapshotKey() string {
	return s.snap.Key()
}

// ValidateSnapshot 校验一份待导入的博客快照
func (s *Store) ValidateSnapshot(data []byte) error {
	var st persistedState
	return s.snap.Validate(data, &st)
}
