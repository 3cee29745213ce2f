package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robby/adminctl/internal/domain"
)

func createTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, nil)
	require.NoError(t, err)
	return c
}

func TestPost_EmptySuccessBody(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	out := map[string]any{"untouched": true}
	err := c.Post(context.Background(), "department", map[string]any{"name": "Ops"}, &out)

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"untouched": true}, out)
}

func TestPost_NonJSONSuccessBody(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "OK")
	})

	var out map[string]any
	err := c.Post(context.Background(), "auth", nil, &out)

	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestError_ServerMessage(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":"email already registered"}`)
	})

	err := c.Post(context.Background(), SignupPath, map[string]any{}, nil)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "email already registered", apiErr.Message)
}

func TestError_FallbackMessage(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "<html>boom</html>")
	})

	err := c.Get(context.Background(), "role", nil)

	require.Error(t, err)
	assert.Equal(t, "status: 500 Internal Server Error", err.Error())
	assert.True(t, IsStatus(err, http.StatusInternalServerError))
}

func TestRequestHeaders(t *testing.T) {
	var got *http.Request
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
	})

	require.NoError(t, c.Post(context.Background(), "member", map[string]any{"a": 1}, nil))

	require.NotNil(t, got)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.NotEmpty(t, got.Header.Get("X-Request-ID"))
}

func TestSessionCookieIsSent(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		case "/auth":
			if cookie, err := r.Cookie("session"); err != nil || cookie.Value != "abc" {
				w.WriteHeader(http.StatusUnauthorized)
			}
		}
	})
	ctx := context.Background()

	ok, err := c.CheckSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Login(ctx, "ops@example.com", "secret"))

	ok, err = c.CheckSession(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.ResetSession())
	ok, err = c.CheckSession(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListResource(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/department", r.URL.Path)
		_, _ = io.WriteString(w, `{"data":[{"id":1,"name":"Ops"},{"id":2,"name":"Sales"}]}`)
	})

	rows, err := c.ListResource(context.Background(), domain.ResourceDepartment)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].ID("id"))
	assert.Equal(t, "Sales", rows[1].Text("name"))
}

func TestListResource_KeepsLargeIDs(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":9007199254740992},{"id":9007199254740993},{"id":2.5}]}`)
	})

	rows, err := c.ListResource(context.Background(), domain.ResourceMember)

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "9007199254740992", rows[0].ID("id"))
	assert.Equal(t, "9007199254740993", rows[1].ID("id"))
	assert.Equal(t, "2.5", rows[2].ID("id"))
	n, ok := rows[2].Number("id")
	assert.True(t, ok)
	assert.Equal(t, 2.5, n)
}

func TestListResource_NoEnvelope(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})

	rows, err := c.ListResource(context.Background(), domain.ResourceRole)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeleteResources_EncodesIDs(t *testing.T) {
	var ids []string
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/role", r.URL.Path)
		assert.NoError(t, json.Unmarshal([]byte(r.URL.Query().Get("ids")), &ids))
	})

	err := c.DeleteResources(context.Background(), domain.ResourceRole, []string{"3", "7"})

	require.NoError(t, err)
	assert.Equal(t, []string{"3", "7"}, ids)
}

func TestDeleteResources_Failure(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"message":"role is in use"}`)
	})

	err := c.DeleteResources(context.Background(), domain.ResourceRole, []string{"3"})

	require.Error(t, err)
	assert.Equal(t, "role is in use", Message(err))
}

func TestNavSettings_Sorted(t *testing.T) {
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/settings/nav", r.URL.Path)
		_, _ = io.WriteString(w, `{"role":true,"department":true,"member":false}`)
	})

	items, err := c.NavSettings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.NavItem{
		{Name: "department", Enabled: true},
		{Name: "member", Enabled: false},
		{Name: "role", Enabled: true},
	}, items)
}

func TestResetPassword_EscapesToken(t *testing.T) {
	var rawPath string
	c := createTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
	})

	require.NoError(t, c.ResetPassword(context.Background(), "a/b", "secret"))

	assert.Equal(t, "auth/resetPassword/a%2Fb", ResetPasswordPath("a/b"))
	assert.Equal(t, "/auth/resetPassword/a%2Fb", rawPath)
}

func TestBaseURLWithPath(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
	}))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL+"/api", nil)
	require.NoError(t, err)
	require.NoError(t, c.Get(context.Background(), "member", nil))

	assert.Equal(t, "/api/member", path)
}
