package report

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	require.NoError(t, client.Ready(context.Background()))
}

func TestClientReadyReportsUnhealthyConverter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	err := client.Ready(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "503")
}

func TestRenderHTMLPostsMultipartDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		doc, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Contains(t, string(doc), "<h1>Stock Report</h1>")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	pdf, err := client.RenderHTML(context.Background(), "<html><body><h1>Stock Report</h1></body></html>")
	require.NoError(t, err)
	require.Equal(t, "%PDF-1.4", string(pdf))
}
