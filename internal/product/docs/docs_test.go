package docs

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

func TestDocDescribesProductAPI(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	require.NoError(t, err)

	var doc struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths       map[string]map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage            `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	assert.Equal(t, "Product Catalog API", doc.Info.Title)
	require.Contains(t, doc.Paths, "/api/products")
	require.Contains(t, doc.Paths, "/api/products/{id}")
	assert.ElementsMatch(t, []string{"get", "post"}, keys(doc.Paths["/api/products"]))
	assert.ElementsMatch(t, []string{"get", "put", "patch", "delete"}, keys(doc.Paths["/api/products/{id}"]))

	for _, op := range []map[string]json.RawMessage{doc.Paths["/api/products"], doc.Paths["/api/products/{id}"]} {
		for _, body := range op {
			var refs []string
			collectRefs(t, body, &refs)
			for _, ref := range refs {
				assert.Contains(t, doc.Definitions, ref[len("#/definitions/"):], "dangling reference %s", ref)
			}
		}
	}
}

func keys(m map[string]json.RawMessage) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func collectRefs(t *testing.T, raw json.RawMessage, refs *[]string) {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(raw, &v))
	var walk func(any)
	walk = func(v any) {
		switch n := v.(type) {
		case map[string]any:
			for k, child := range n {
				if s, ok := child.(string); ok && k == "$ref" {
					*refs = append(*refs, s)
					continue
				}
				walk(child)
			}
		case []any:
			for _, child := range n {
				walk(child)
			}
		}
	}
	walk(v)
}
