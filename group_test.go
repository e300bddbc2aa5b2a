package apidoc_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/apidoc"
)

func TestGroup(t *testing.T) {
	t.Parallel()

	header := func(name, value string) apidoc.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Add(name, value)
				next.ServeHTTP(w, r)
			})
		}
	}

	r := apidoc.New()
	v1 := r.Group("/v1", apidoc.WithGroupTags("v1"), apidoc.WithGroupMiddleware(header("X-Layer", "v1")))
	admin := v1.Group("/admin", apidoc.WithGroupTags("admin"), apidoc.WithGroupMiddleware(header("X-Layer", "admin")))

	apidoc.Get(v1, "/todo", getTodo, apidoc.WithTags("todos"))
	apidoc.Get(admin, "/project", getProject)
	apidoc.Get(r, "/health", func(_ context.Context, _ *apidoc.Void) (*apidoc.Void, error) {
		return &apidoc.Void{}, nil
	})

	resp, _ := do(t, r, newRequest(http.MethodGet, "/v1/admin/project", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"v1", "admin"}, resp.Header.Values("X-Layer"))

	resp, _ = do(t, r, newRequest(http.MethodGet, "/v1/todo", nil))
	assert.Equal(t, []string{"v1"}, resp.Header.Values("X-Layer"))

	resp, _ = do(t, r, newRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, resp.Header.Values("X-Layer"))

	doc := r.Spec()
	assert.Equal(t, []string{"v1", "todos"}, doc.Paths["/v1/todo"]["get"].Tags)
	assert.Equal(t, []string{"v1", "admin"}, doc.Paths["/v1/admin/project"]["get"].Tags)
	assert.Equal(t, "getV1AdminProject", doc.Paths["/v1/admin/project"]["get"].OperationID)
	assert.Empty(t, doc.Paths["/health"]["get"].Tags)
}

func TestGroup_raw(t *testing.T) {
	t.Parallel()

	r := apidoc.New()
	g := r.Group("/hooks", apidoc.WithGroupTags("hooks"))
	apidoc.Raw(g, http.MethodPost, "/github", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}, apidoc.OperationInfo{Summary: "GitHub webhook", Status: http.StatusAccepted})

	resp, _ := do(t, r, newRequest(http.MethodPost, "/hooks/github", nil))
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	op := r.Spec().Paths["/hooks/github"]["post"]
	require.NotNil(t, op)
	assert.Equal(t, []string{"hooks"}, op.Tags)
	assert.Contains(t, op.Responses, "202")
}
