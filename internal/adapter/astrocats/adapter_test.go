package astrocats

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"SNCatalog/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *Adapter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAdapter(config.FetchConfig{BaseURL: srv.URL + "/", Timeout: 5 * time.Second}, log).(*Adapter)
}

func TestFetchEvent(t *testing.T) {
	a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/SN2011fe", r.URL.Path)
		_, _ = w.Write([]byte(`{"SN2011fe":{"sources":[],"redshift":[{"value":"0.000804","source":"2"}]}}`))
	})

	body, err := a.FetchEvent(context.Background(), "SN2011fe")
	require.NoError(t, err)
	assert.Contains(t, string(body), "0.000804")
	assert.Equal(t, "astrocats", a.GetName())
}

func TestFetchEvent_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "http error", status: http.StatusNotFound, body: `{}`, wantErr: "HTTP 404"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "解析事件"},
		{name: "missing key", status: http.StatusOK, body: `{"other":{}}`, wantErr: "不在响应中"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := a.FetchEvent(context.Background(), "SN2011fe")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
