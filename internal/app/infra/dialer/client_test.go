package dialer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retention/dialersync/internal/app/pkg/errorx"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		BaseURL: baseURL + "/vicidial/non_agent_api.php",
		User:    "apiuser",
		Pass:    "s3cret",
		Source:  "test",
		Timeout: 2 * time.Second,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://x", User: "u"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "dialer.pass")
}

func TestCall_FormEncodedBody(t *testing.T) {
	var (
		gotBody        string
		gotContentType string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		gotContentType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, "SUCCESS: version\nVERSION: 2.14-917a\nBUILD: 230101\n")
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	var missing *string
	res, err := c.Call(context.Background(), "version", Params{
		P("list_id", 1001),
		P("skip_me", nil),
		P("skip_ptr", missing),
		P("user", "override-attempt"),
		P("comments", "a b&c"),
	})
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.True(t, strings.HasPrefix(gotBody, "source=test&user=apiuser&pass=s3cret&function=version"))

	form, err := url.ParseQuery(gotBody)
	require.NoError(t, err)
	assert.Equal(t, "1001", form.Get("list_id"))
	assert.Equal(t, "a b&c", form.Get("comments"))
	assert.Equal(t, []string{"apiuser"}, form["user"])
	_, has := form["skip_me"]
	assert.False(t, has)
	_, has = form["skip_ptr"]
	assert.False(t, has)

	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	v, ok := res.Field("VERSION")
	assert.True(t, ok)
	assert.Equal(t, "2.14-917a", v)
}

func TestCall_NonSuccessStatusIsResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "ERROR: add_lead USER DOES NOT HAVE PERMISSION")
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv.URL).Call(context.Background(), "add_lead", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, res.HTTPStatus)
	assert.Equal(t, OutcomeFailure, res.Outcome())
}

func TestCall_TransportErrorOnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := NewClient(Config{
		BaseURL: srv.URL,
		User:    "u",
		Pass:    "p",
		Timeout: 50 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	_, err = c.Call(context.Background(), "version", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorx.ErrTransport))
	assert.True(t, errorx.IsRetryable(err))
}

func TestCallAgent_DiscoversFirstNon404(t *testing.T) {
	var (
		mu   sync.Mutex
		hits []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()

		if r.URL.Path != "/vicidial/agc/api.php" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "SUCCESS: external_pause function set - PAUSE")
	}))
	defer srv.Close()

	snapshot := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), hits...)
	}

	c, err := NewClient(Config{
		BaseURL:     srv.URL + "/vicidial/non_agent_api.php",
		AgentAPIURL: srv.URL + "/custom/api.php",
		User:        "u",
		Pass:        "p",
	}, nil)
	require.NoError(t, err)

	res, err := c.CallAgent(context.Background(), "external_pause", Params{P("agent_user", "jdoe"), P("value", "PAUSE")})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.HTTPStatus)
	assert.Equal(t, []string{"/custom/api.php", "/agc/api.php", "/vicidial/agc/api.php"}, snapshot())
	assert.Equal(t, srv.URL+"/vicidial/agc/api.php", c.AgentURL())

	// 第二次直接命中缓存地址
	mu.Lock()
	hits = nil
	mu.Unlock()
	_, err = c.CallAgent(context.Background(), "external_pause", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/vicidial/agc/api.php"}, snapshot())
}

func TestCallAgent_All404ReturnsLastResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.CallAgent(context.Background(), "external_status", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.HTTPStatus)
	assert.Equal(t, "", c.AgentURL())
}

func TestCallAgent_TransportErrorWinsOver404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	downURL := down.URL + "/custom/api.php"
	down.Close()

	c, err := NewClient(Config{
		BaseURL:     srv.URL + "/vicidial/non_agent_api.php",
		AgentAPIURL: downURL,
		User:        "u",
		Pass:        "p",
		Timeout:     2 * time.Second,
	}, nil)
	require.NoError(t, err)

	res, err := c.CallAgent(context.Background(), "external_status", nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, errorx.ErrTransport))
	assert.Equal(t, "", c.AgentURL())
}
