package client

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressReader_ReportsProgress(t *testing.T) {
	data := []byte("hello world this is test data")
	reader := bytes.NewReader(data)

	var progressCalls []struct{ current, total int64 }
	pr := &progressReader{
		reader: reader,
		total:  int64(len(data)),
		onProgress: func(current, total int64) {
			progressCalls = append(progressCalls, struct{ current, total int64 }{current, total})
		},
	}

	result, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, data, result)

	// Progress should have been called at least once
	assert.NotEmpty(t, progressCalls)

	// Final progress should equal total
	lastCall := progressCalls[len(progressCalls)-1]
	assert.Equal(t, int64(len(data)), lastCall.current)
	assert.Equal(t, int64(len(data)), lastCall.total)
}

func TestProgressReader_NilCallback(t *testing.T) {
	data := []byte("hello world")
	reader := bytes.NewReader(data)

	pr := &progressReader{
		reader:     reader,
		total:      int64(len(data)),
		onProgress: nil, // No callback
	}

	result, err := io.ReadAll(pr)
	require.NoError(t, err)
	assert.Equal(t, data, result)
}

func TestProgressReader_SmallReads(t *testing.T) {
	data := []byte("hello world")
	reader := bytes.NewReader(data)

	var progressValues []int64
	pr := &progressReader{
		reader: reader,
		total:  int64(len(data)),
		onProgress: func(current, total int64) {
			progressValues = append(progressValues, current)
		},
	}

	// Read one byte at a time
	buf := make([]byte, 1)
	for {
		n, err := pr.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	}

	// Progress should increase monotonically
	for i := 1; i < len(progressValues); i++ {
		assert.GreaterOrEqual(t, progressValues[i], progressValues[i-1])
	}
}

func TestAPIClient_GetDecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/projects", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"items":[],"has_more":false}}`))
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL + "/")
	assert.Equal(t, server.URL, api.BaseURL())

	resp, err := api.Get("/projects")
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[],"has_more":false}`, string(resp.Data))
}

func TestAPIClient_PostSendsJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"projectId":"p1","query":"security"}`, string(body))
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)
	_, err := api.Post("/review", reviewRequest{ProjectID: "p1", Query: "security"})
	require.NoError(t, err)
}

func TestAPIClient_ErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"envelope error", http.StatusNotFound, `{"error":"project not found"}`, "project not found"},
		{"plain text error", http.StatusBadGateway, "bad gateway\n", "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewAPIClientWithConfig(server.URL).Get("/projects/x")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
		})
	}
}

func TestAPIClient_UploadMultipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)

		assert.Equal(t, "main.go", header.Filename)
		assert.Equal(t, "package main\n", string(content))
		assert.Equal(t, "demo", r.FormValue("projectName"))
		_, present := r.MultipartForm.Value["empty"]
		assert.False(t, present)

		_, _ = w.Write([]byte(`{"data":{"projectId":"p1","chunkCount":1}}`))
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)
	resp, err := api.UploadMultipart("/upload", "main.go", strings.NewReader("package main\n"), map[string]string{
		"projectName": "demo",
		"empty":       "",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"projectId":"p1","chunkCount":1}`, string(resp.Data))
}

func TestAPIClient_DownloadFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte("print('hi')\n"))
	}))
	defer server.Close()

	api := NewAPIClientWithConfig(server.URL)
	outputPath := filepath.Join(t.TempDir(), "source.py")

	var lastCurrent int64
	err := api.DownloadFile(server.URL+"/source", outputPath, func(current, total int64) {
		lastCurrent = current
	})
	require.NoError(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(data))
	assert.Equal(t, int64(len(data)), lastCurrent)

	err = api.DownloadFile(server.URL+"/missing", filepath.Join(t.TempDir(), "x"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestAPIClient_DownloadFile_KeepsExistingFileOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	dir := t.TempDir()
	outputPath := filepath.Join(dir, "source.txt")
	require.NoError(t, os.WriteFile(outputPath, []byte("previous"), 0o644))

	err := NewAPIClientWithConfig(server.URL).DownloadFile(server.URL+"/source", outputPath, nil)
	require.Error(t, err)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAPIClient_SetsClientHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer server.Close()

	resp, err := NewAPIClientWithConfig(server.URL).Get("/health")
	require.NoError(t, err)

	var body map[string]string
	require.NoError(t, resp.Decode(&body, "health"))
	assert.Equal(t, "ok", body["status"])
}
