package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/mysqlts/internal/errs"
	"github.com/koustreak/mysqlts/internal/logger"
	"github.com/koustreak/mysqlts/internal/schema"
	"github.com/koustreak/mysqlts/internal/tsgen"
)

type stubReader struct {
	columns map[string][]schema.ColumnMetadata
	listErr error
}

func (s *stubReader) ListTables(context.Context) ([]string, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	names := make([]string, 0, len(s.columns))
	for _, n := range []string{"users", "posts"} {
		if _, ok := s.columns[n]; ok {
			names = append(names, n)
		}
	}
	return names, nil
}

func (s *stubReader) Columns(_ context.Context, table string) ([]schema.ColumnMetadata, error) {
	cols, ok := s.columns[table]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s not found", table)
	}
	return cols, nil
}

func (s *stubReader) EnumColumns(context.Context, string) ([]schema.EnumColumn, error) {
	return nil, nil
}

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestServer(t *testing.T, reader *stubReader, pinger Pinger) (*Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := logger.New(&logger.Config{Level: "info", Format: "json", Output: &logs})
	gen := tsgen.NewGenerator(reader, tsgen.Options{})
	return New(Config{}, gen, pinger, log), &logs
}

func defaultReader() *stubReader {
	return &stubReader{columns: map[string][]schema.ColumnMetadata{
		"users": {{Name: "id", NativeType: "int"}},
		"posts": {{Name: "title", NativeType: "varchar", Nullable: true}},
	}}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_Table(t *testing.T) {
	s, logs := newTestServer(t, defaultReader(), nil)

	rec := get(t, s.Handler(), "/tables/users.ts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contentTypeTS, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "export interface Users {\n  id: number\n}")
	assert.Contains(t, logs.String(), `"path":"/tables/users.ts"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestServer_Table_NotFound(t *testing.T) {
	s, _ := newTestServer(t, defaultReader(), nil)

	rec := get(t, s.Handler(), "/tables/ghost.ts")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "ghost")
}

func TestServer_Schema(t *testing.T) {
	s, _ := newTestServer(t, defaultReader(), nil)

	rec := get(t, s.Handler(), "/schema.ts")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "export interface Users {")
	assert.Contains(t, body, "export interface Posts {\n  title: string | null\n}")
	assert.Less(t, bytes.Index(rec.Body.Bytes(), []byte("Users {")), bytes.Index(rec.Body.Bytes(), []byte("Posts {")))
}

func TestServer_Schema_BackendDown(t *testing.T) {
	reader := defaultReader()
	reader.listErr = errs.Wrap(errs.ErrKindConnectionFailed, "list tables", errors.New("refused"))
	s, logs := newTestServer(t, reader, nil)

	rec := get(t, s.Handler(), "/schema.ts")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, logs.String(), "request failed")
}

func TestServer_ErrorLogCarriesRequestID(t *testing.T) {
	reader := defaultReader()
	reader.listErr = errs.Wrap(errs.ErrKindQueryFailed, "list tables", errors.New("syntax"))
	s, logs := newTestServer(t, reader, nil)

	req := httptest.NewRequest(http.MethodGet, "/schema.ts", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	lines := strings.Split(strings.TrimSpace(logs.String()), "\n")
	require.Len(t, lines, 2, "one error line and one request line")
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "req-42", entry["request_id"], line)
	}
	assert.Contains(t, lines[0], `"message":"request failed"`)
	assert.Contains(t, lines[1], `"message":"request"`)
}

func TestServer_Health(t *testing.T) {
	s, _ := newTestServer(t, defaultReader(), pingFunc(func(context.Context) error { return nil }))
	rec := get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	s, _ = newTestServer(t, defaultReader(), pingFunc(func(context.Context) error {
		return errs.New(errs.ErrKindTimeout, "ping timed out")
	}))
	rec = get(t, s.Handler(), "/healthz")
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	s, _ := newTestServer(t, defaultReader(), nil)
	assert.Equal(t, http.StatusNotFound, get(t, s.Handler(), "/tables/users.js").Code)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/schema.ts", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.New(errs.ErrKindNotFound, ""), http.StatusNotFound},
		{errs.New(errs.ErrKindInvalidInput, ""), http.StatusBadRequest},
		{errs.New(errs.ErrKindPermissionDenied, ""), http.StatusForbidden},
		{errs.New(errs.ErrKindTimeout, ""), http.StatusGatewayTimeout},
		{errs.New(errs.ErrKindConnectionFailed, ""), http.StatusBadGateway},
		{errs.New(errs.ErrKindQueryFailed, ""), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestServer_Serve_Shutdown(t *testing.T) {
	s := New(Config{}, tsgen.NewGenerator(defaultReader(), tsgen.Options{}), nil, nil)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/tables/users.ts")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "export interface Users")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
