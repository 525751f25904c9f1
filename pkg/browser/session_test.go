package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chromeCandidates = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
	"/usr/bin/google-chrome",
	"/usr/local/bin/chrome",
	"/snap/bin/chromium",
	"chrome",
}

func chromePath(t *testing.T) string {
	t.Helper()

	for _, candidate := range chromeCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path
		}
	}

	t.Skip("no Chrome or Chromium executable found")
	return ""
}

const plainPage = `<html><head><title>D-Ticket</title></head><body>
	<form><input type="hidden" name="viewStateHolder" value="state-42"></form>
	<p>Search trains</p>
</body></html>`

const cookiePage = `<html><body>
	<script>window.consentClicks = 0;</script>
	<button class="btn-cookie-consent-preview" onclick="window.consentClicks++">Accept</button>
</body></html>`

const languagePage = `<html><body>
	<a href="#" class="dropdown-toggle current-lang" onclick="document.getElementById('languages').style.display='block'; return false;">TH</a>
	<div id="languages" style="display:none">
		<a href="#" class="switch-lang" onclick="document.body.dataset.lang='en'; return false;">English</a>
	</div>
</body></html>`

func newPortalServer(t *testing.T) *httptest.Server {
	release := make(chan struct{})

	mux := http.NewServeMux()
	serveHTML := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, body)
		}
	}
	mux.HandleFunc("/plain", serveHTML(plainPage))
	mux.HandleFunc("/cookies", serveHTML(cookiePage))
	mux.HandleFunc("/language", serveHTML(languagePage))

	// /slow sends the start of a document and never finishes it
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body><p>loading")
		if flusher, ok := w.(http.Flusher); ok {
			flusher.Flush()
		}

		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"method":          r.Method,
			"requestedWith":   r.Header.Get("X-Requested-With"),
			"contentType":     r.Header.Get("Content-Type"),
			"dateStart":       r.PostForm.Get("dateStart"),
			"viewStateHolder": r.PostForm.Get("viewStateHolder"),
		})
	})

	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	return server
}

func testOptions(t *testing.T, portalURL string) Options {
	return Options{
		PortalURL:         portalURL,
		Headless:          true,
		UserAgent:         "srt-timetables-test",
		ExecPath:          chromePath(t),
		NavigationTimeout: 20 * time.Second,
		RequestTimeout:    10 * time.Second,
		ProbeTimeout:      300 * time.Millisecond,
		CloseGrace:        0,
	}
}

func openTestSession(t *testing.T, options Options) *Session {
	t.Helper()

	session, err := Open(context.Background(), options)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return session
}

func TestOpenNavigationTimeout(t *testing.T) {
	server := newPortalServer(t)

	options := testOptions(t, server.URL+"/slow")
	options.NavigationTimeout = time.Second
	options.ScreenshotPath = filepath.Join(t.TempDir(), "error.png")

	session, err := Open(context.Background(), options)

	assert.Nil(t, session)
	assert.True(t, errors.Is(err, ErrNavigation))

	info, statErr := os.Stat(options.ScreenshotPath)
	require.NoError(t, statErr)
	assert.Greater(t, info.Size(), int64(0))
}

func TestOpenWithoutConsentOrLanguageControls(t *testing.T) {
	assert := assert.New(t)

	server := newPortalServer(t)
	session := openTestSession(t, testOptions(t, server.URL+"/plain"))

	assert.False(session.AcceptCookies())
	assert.False(session.SwitchToEnglish())

	viewState, err := session.ViewState(context.Background())
	require.NoError(t, err)
	assert.Equal("state-42", viewState)
}

func TestAcceptCookies(t *testing.T) {
	server := newPortalServer(t)
	session := openTestSession(t, testOptions(t, server.URL+"/cookies"))

	assert.True(t, session.AcceptCookies())

	// once during Open and once above
	var clicks int
	require.NoError(t, chromedp.Run(session.ctx, chromedp.Evaluate(`window.consentClicks`, &clicks)))
	assert.Equal(t, 2, clicks)
}

func TestSwitchToEnglish(t *testing.T) {
	server := newPortalServer(t)
	session := openTestSession(t, testOptions(t, server.URL+"/language"))

	var language string
	require.NoError(t, chromedp.Run(session.ctx, chromedp.Evaluate(`document.body.dataset.lang || ''`, &language)))
	assert.Equal(t, "en", language)

	assert.True(t, session.SwitchToEnglish())
}

func TestPostForm(t *testing.T) {
	assert := assert.New(t)

	server := newPortalServer(t)
	session := openTestSession(t, testOptions(t, server.URL+"/plain"))

	form := url.Values{}
	form.Set("dateStart", "08/01/2024")
	form.Set("viewStateHolder", `it's & "quoted"`)

	body, err := session.PostForm(context.Background(), server.URL+"/echo", form)
	require.NoError(t, err)

	var echoed map[string]string
	require.NoError(t, json.Unmarshal(body, &echoed))

	assert.Equal(http.MethodPost, echoed["method"])
	assert.Equal("XMLHttpRequest", echoed["requestedWith"])
	assert.Contains(echoed["contentType"], "application/x-www-form-urlencoded")
	assert.Equal("08/01/2024", echoed["dateStart"])
	assert.Equal(`it's & "quoted"`, echoed["viewStateHolder"])

	_, err = session.PostForm(context.Background(), server.URL+"/fail", form)
	assert.ErrorContains(err, "HTTP 500")
}
