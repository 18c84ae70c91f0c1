package storage

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"SNCatalog/internal/config"
	"SNCatalog/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ interfaces.ExportSink = (*DirSink)(nil)
	_ interfaces.ExportSink = (*S3Sink)(nil)
)

func TestDirSink_Put(t *testing.T) {
	root := t.TempDir()
	sink, err := NewDirSink(root)
	require.NoError(t, err)

	require.NoError(t, sink.Put(context.Background(), "SN2011fe.json", []byte(`{"a":1}`)))
	require.NoError(t, sink.Put(context.Background(), "nested/SN2014J.json", []byte(`{}`)))

	got, err := os.ReadFile(filepath.Join(root, "SN2011fe.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))
	assert.FileExists(t, filepath.Join(root, "nested", "SN2014J.json"))
}

func TestDirSink_RejectsEscape(t *testing.T) {
	sink, err := NewDirSink(t.TempDir())
	require.NoError(t, err)
	assert.Error(t, sink.Put(context.Background(), "../outside.json", []byte(`{}`)))
}

// recordingTransport 记录 PUT 请求的假 S3 端点
type recordingTransport struct {
	mu   sync.Mutex
	puts map[string]string
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	body := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		body = string(raw)
	}
	if req.Method == http.MethodPut {
		rt.mu.Lock()
		rt.puts[req.URL.Path] = body
		rt.mu.Unlock()
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Etag": []string{`"etag"`}},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}, nil
}

func TestS3Sink_Put(t *testing.T) {
	rt := &recordingTransport{puts: map[string]string{}}
	sink, err := NewS3Sink(context.Background(), config.S3Config{
		Endpoint:  "https://s3.test.local",
		Region:    "eu-central-1",
		Bucket:    "osc",
		Prefix:    "dump/",
		AccessKey: "AKIA",
		SecretKey: "SECRET",
	}, WithHTTPClient(&http.Client{Transport: rt}))
	require.NoError(t, err)
	assert.Equal(t, "s3://osc/dump", sink.Name())

	require.NoError(t, sink.Put(context.Background(), "SN2024abc.json", []byte(`{"SN2024abc":{}}`)))

	require.Contains(t, rt.puts, "/osc/dump/SN2024abc.json")
	assert.Contains(t, rt.puts["/osc/dump/SN2024abc.json"], "SN2024abc")
}

func TestNewS3Sink_RequiresBucket(t *testing.T) {
	_, err := NewS3Sink(context.Background(), config.S3Config{})
	assert.Error(t, err)
}

func TestNewSink(t *testing.T) {
	out := filepath.Join(t.TempDir(), "export")
	cfg := config.ExportConfig{OutputDir: out}

	sink, err := NewSink(context.Background(), cfg, false, "")
	require.NoError(t, err)
	assert.Equal(t, "dir:"+out, sink.Name())
	assert.DirExists(t, out)

	override := filepath.Join(t.TempDir(), "other")
	sink, err = NewSink(context.Background(), cfg, false, override)
	require.NoError(t, err)
	assert.Equal(t, "dir:"+override, sink.Name())

	_, err = NewSink(context.Background(), cfg, true, "")
	assert.Error(t, err)

	cfg.S3 = config.S3Config{Bucket: "snapi", Region: "us-east-1", AccessKey: "k", SecretKey: "s"}
	sink, err = NewSink(context.Background(), cfg, true, "")
	require.NoError(t, err)
	assert.IsType(t, &S3Sink{}, sink)
}
