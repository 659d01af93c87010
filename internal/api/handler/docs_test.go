package handler

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerly/budget-api/docs"
)

var (
	summaryLine = regexp.MustCompile(`^//\s+@Summary\s+(.+)$`)
	routerLine  = regexp.MustCompile(`^//\s+@Router\s+(\S+)\s+\[(\w+)\]$`)
	paramLine   = regexp.MustCompile(`^//\s+@Param\s+(\S+)\s+(\S+)\s+(\S+)\s+\S+\s+"(.*)"$`)
	schemaLine  = regexp.MustCompile(`^//\s+@(?:Success|Failure)\s+(\d+)\s+\{(?:object|array)\}\s+(\S+)$`)
)

type annotatedRoute struct {
	summary   string
	params    map[string]string // name -> description
	bodyType  string
	responses map[string]string // status -> type
}

func readAnnotations(t *testing.T) map[string]annotatedRoute {
	t.Helper()
	files, err := filepath.Glob("*.go")
	require.NoError(t, err)

	routes := map[string]annotatedRoute{}
	for _, name := range files {
		if strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := os.Open(name)
		require.NoError(t, err)

		cur := annotatedRoute{params: map[string]string{}, responses: map[string]string{}}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if m := summaryLine.FindStringSubmatch(line); m != nil {
				cur.summary = m[1]
			}
			if m := paramLine.FindStringSubmatch(line); m != nil {
				cur.params[m[1]] = m[4]
				if m[2] == "body" {
					cur.bodyType = m[3]
				}
			}
			if m := schemaLine.FindStringSubmatch(line); m != nil {
				cur.responses[m[1]] = m[2]
			}
			if m := routerLine.FindStringSubmatch(line); m != nil {
				routes[m[1]+" "+m[2]] = cur
				cur = annotatedRoute{params: map[string]string{}, responses: map[string]string{}}
			}
		}
		require.NoError(t, sc.Err())
		require.NoError(t, f.Close())
	}
	return routes
}

type swaggerDoc struct {
	Paths map[string]map[string]struct {
		Summary    string `json:"summary"`
		Parameters []struct {
			Name        string `json:"name"`
			In          string `json:"in"`
			Description string `json:"description"`
			Schema      struct {
				Ref string `json:"$ref"`
			} `json:"schema"`
		} `json:"parameters"`
		Responses map[string]struct {
			Schema struct {
				Ref   string `json:"$ref"`
				Items struct {
					Ref string `json:"$ref"`
				} `json:"items"`
			} `json:"schema"`
		} `json:"responses"`
	} `json:"paths"`
	Definitions map[string]json.RawMessage `json:"definitions"`
}

func definitionName(goType string) string {
	if strings.Contains(goType, ".") {
		return goType
	}
	return "handler." + goType
}

func TestSwaggerDoc_MatchesAnnotations(t *testing.T) {
	routes := readAnnotations(t)
	require.NotEmpty(t, routes)

	var doc swaggerDoc
	require.NoError(t, json.Unmarshal([]byte(docs.SwaggerInfo.ReadDoc()), &doc))

	documented := 0
	for _, ops := range doc.Paths {
		documented += len(ops)
	}
	assert.Equal(t, len(routes), documented, "every documented operation has an annotation")

	for key, want := range routes {
		path, method, _ := strings.Cut(key, " ")
		op, ok := doc.Paths[path][method]
		if !assert.True(t, ok, "%s missing from docs", key) {
			continue
		}
		assert.Equal(t, want.summary, op.Summary, key)

		got := map[string]string{}
		for _, p := range op.Parameters {
			got[p.Name] = p.Description
			if p.In == "body" {
				assert.Equal(t, "#/definitions/"+definitionName(want.bodyType), p.Schema.Ref, key)
			}
		}
		assert.Equal(t, want.params, got, key)

		for status, goType := range want.responses {
			resp, ok := op.Responses[status]
			if !assert.True(t, ok, "%s has no %s response", key, status) {
				continue
			}
			if strings.HasPrefix(goType, "map") {
				continue
			}
			ref := resp.Schema.Ref
			if ref == "" {
				ref = resp.Schema.Items.Ref
			}
			assert.Equal(t, "#/definitions/"+definitionName(goType), ref, "%s %s", key, status)
		}
	}

	for _, ops := range doc.Paths {
		for _, op := range ops {
			for _, resp := range op.Responses {
				for _, ref := range []string{resp.Schema.Ref, resp.Schema.Items.Ref} {
					if ref != "" {
						assert.Contains(t, doc.Definitions, strings.TrimPrefix(ref, "#/definitions/"))
					}
				}
			}
		}
	}
}
