package handler

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"ResumeSense/docs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Tags []string `json:"tags"`
	} `json:"paths"`
}

func loadSwaggerDoc(t *testing.T) swaggerDoc {
	t.Helper()
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	require.NoError(t, err)
	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "docs.go must render valid JSON")
	return doc
}

var ginParam = regexp.MustCompile(`[:*]([A-Za-z_]+)`)

// 라우터에 등록된 API 는 모두 문서에 있어야 함
func TestSwaggerDoc_CoversRoutes(t *testing.T) {
	doc := loadSwaggerDoc(t)
	h, _, _ := newTestHandler(t)

	for _, route := range newRouter(h).Routes() {
		if route.Path == "/metrics" || strings.HasPrefix(route.Path, "/swagger/") {
			continue
		}
		path := ginParam.ReplaceAllString(route.Path, "{$1}")
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, "undocumented path %s", path) {
			continue
		}
		assert.Contains(t, ops, strings.ToLower(route.Method), "undocumented %s %s", route.Method, path)
	}
}

var (
	tagsLine   = regexp.MustCompile(`^//\s*@Tags\s+(.+?)\s*$`)
	routerLine = regexp.MustCompile(`^//\s*@Router\s+(\S+)\s+\[(\w+)\]`)
)

// 핸들러 주석(@Tags, @Router)과 문서가 어긋나면 실패
func TestSwaggerDoc_MatchesAnnotations(t *testing.T) {
	doc := loadSwaggerDoc(t)

	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	annotated := 0
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := os.Open(name)
		require.NoError(t, err)

		var tags string
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if m := tagsLine.FindStringSubmatch(line); m != nil {
				tags = m[1]
				continue
			}
			m := routerLine.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			annotated++
			op, ok := doc.Paths[m[1]][m[2]]
			if assert.True(t, ok, "%s: %s [%s] missing from docs", name, m[1], m[2]) {
				assert.Equal(t, []string{tags}, op.Tags, "%s: tags for %s [%s]", name, m[1], m[2])
			}
			tags = ""
		}
		require.NoError(t, sc.Err())
		f.Close()
	}

	documented := 0
	for _, ops := range doc.Paths {
		documented += len(ops)
	}
	assert.Equal(t, annotated, documented, "docs.go has operations without a handler annotation")
}
