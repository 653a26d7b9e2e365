package upload

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type part struct {
	field       string
	filename    string
	contentType string
	body        []byte
}

func multipartBody(t *testing.T, fields map[string]string, parts ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, p := range parts {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, p.field, p.filename))
		if p.contentType != "" {
			h.Set("Content-Type", p.contentType)
		}
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

type testServer struct {
	dir    string
	router *gin.Engine
	seen   []File
	mu     sync.Mutex
}

func newTestServer(t *testing.T, status int, fields ...FieldSpec) *testServer {
	t.Helper()
	dir := t.TempDir()
	store, err := NewLocalStore(dir)
	require.NoError(t, err)

	ts := &testServer{dir: dir, router: gin.New()}
	ts.router.Use(gin.Recovery())
	gate := Gate(Config{
		Store:       store,
		MaxFileSize: 1024,
		Accept:      AnyOf(Images, PDF),
		Fields:      fields,
	})
	ts.router.POST("/upload", gate, func(c *gin.Context) {
		ts.mu.Lock()
		ts.seen = append(ts.seen, Files(c)...)
		ts.mu.Unlock()
		c.JSON(status, gin.H{"files": Files(c)})
	})
	ts.router.POST("/panic", gate, func(c *gin.Context) {
		panic("handler exploded")
	})
	return ts
}

func (ts *testServer) do(t *testing.T, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) stored(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(ts.dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var profileFields = []FieldSpec{
	{Name: "photo", MaxCount: 1, Accept: Images},
	{Name: "resume", MaxCount: 1, Accept: PDF},
}

func TestGate_StoresAcceptedFiles(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusOK, profileFields...)
	body, ct := multipartBody(t, map[string]string{"fullName": "Asha"},
		part{"photo", "Me.PNG", "image/png", pngBytes},
		part{"resume", "cv.pdf", "application/pdf", []byte("%PDF-1.4 fake")},
	)

	w := ts.do(t, "/upload", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, ts.seen, 2)

	byField := map[string]File{}
	for _, f := range ts.seen {
		byField[f.Field] = f
	}
	assert.Regexp(t, regexp.MustCompile(`^photo-\d{13}-[0-9a-f]{12}\.png$`), byField["photo"].Name)
	assert.Equal(t, ".png", byField["photo"].Ext)
	assert.Regexp(t, regexp.MustCompile(`^resume-\d{13}-[0-9a-f]{12}\.pdf$`), byField["resume"].Name)
	assert.ElementsMatch(t, []string{byField["photo"].Name, byField["resume"].Name}, ts.stored(t))
	assert.Contains(t, w.Body.String(), `"generatedFileName"`)
}

func TestGate_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		parts      []part
		wantStatus int
		wantErr    string
	}{
		{
			name:       "text/plain",
			parts:      []part{{"photo", "notes.txt", "text/plain", []byte("hello")}},
			wantStatus: http.StatusBadRequest,
			wantErr:    "text/plain",
		},
		{
			name:       "pdf in image field",
			parts:      []part{{"photo", "cv.pdf", "application/pdf", []byte("%PDF-1.4")}},
			wantStatus: http.StatusBadRequest,
			wantErr:    "not allowed",
		},
		{
			name:       "oversize",
			parts:      []part{{"photo", "big.png", "image/png", append(pngBytes, bytes.Repeat([]byte{1}, 2048)...)}},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantErr:    "exceeds",
		},
		{
			name:       "unexpected field",
			parts:      []part{{"avatar", "a.png", "image/png", pngBytes}},
			wantStatus: http.StatusBadRequest,
			wantErr:    "unexpected file field",
		},
		{
			name: "too many files",
			parts: []part{
				{"photo", "a.png", "image/png", pngBytes},
				{"photo", "b.png", "image/png", pngBytes},
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    "too many files",
		},
		{
			name: "one bad part rejects all",
			parts: []part{
				{"photo", "a.png", "image/png", pngBytes},
				{"resume", "cv.txt", "text/plain", []byte("plain")},
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    "not allowed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, http.StatusOK, profileFields...)
			body, ct := multipartBody(t, nil, tt.parts...)

			w := ts.do(t, "/upload", body, ct)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
			assert.Empty(t, ts.seen, "handler must not run")
			assert.Empty(t, ts.stored(t))
		})
	}
}

func TestGate_NotMultipart(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusOK)
	w := ts.do(t, "/upload", bytes.NewBufferString(`{"a":1}`), "application/json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"multipart/form-data request required"}`, w.Body.String())
}

func TestGate_SniffsGenericContentType(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusOK)
	body, ct := multipartBody(t, nil,
		part{"scan", "scan.png", "application/octet-stream", pngBytes},
	)

	w := ts.do(t, "/upload", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, ts.seen, 1)
	assert.Equal(t, "image/png", ts.seen[0].ContentType)
}

func TestGate_CleansUpOnFailureStatus(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusUnprocessableEntity, profileFields...)
	body, ct := multipartBody(t, nil, part{"photo", "a.png", "image/png", pngBytes})

	w := ts.do(t, "/upload", body, ct)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Len(t, ts.seen, 1, "handler saw the file")
	assert.Empty(t, ts.stored(t), "file must be removed after a failed response")
}

func TestGate_CleansUpOnPanic(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusOK, profileFields...)
	body, ct := multipartBody(t, nil, part{"photo", "a.png", "image/png", pngBytes})

	w := ts.do(t, "/panic", body, ct)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, ts.stored(t))
}

func TestGate_ConcurrentUploadsNeverCollide(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusOK)
	const n = 25

	var wg sync.WaitGroup
	codes := make([]int, n)
	for i := 0; i < n; i++ {
		body, ct := multipartBody(t, nil, part{"photo", "same.png", "image/png", pngBytes})
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			ts.router.ServeHTTP(w, req)
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for _, code := range codes {
		assert.Equal(t, http.StatusOK, code)
	}
	assert.Len(t, ts.stored(t), n)
}

func TestGate_ChecksContentNotJustDeclaredType(t *testing.T) {
	t.Parallel()

	page := []byte("<html><body><script>alert(document.cookie)</script></body></html>")
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)

	tests := []struct {
		name    string
		part    part
		wantErr string
	}{
		{"html declared as png", part{"photo", "logo.html", "image/png", page}, "text/html"},
		{"html declared as png with png name", part{"photo", "logo.png", "image/png", page}, "text/html"},
		{"svg declared as svg", part{"photo", "logo.svg", "image/svg+xml", svg}, "not allowed"},
		{"svg with generic type", part{"photo", "logo.svg", "application/octet-stream", svg}, "not allowed"},
		{"png declared as html", part{"photo", "logo.png", "text/html", pngBytes}, "text/html"},
		{"html declared as pdf", part{"resume", "cv.pdf", "application/pdf", page}, "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t, http.StatusOK, profileFields...)
			body, ct := multipartBody(t, nil, tt.part)

			w := ts.do(t, "/upload", body, ct)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantErr)
			assert.Empty(t, ts.seen)
			assert.Empty(t, ts.stored(t))
		})
	}
}

func TestGate_StoredExtensionFollowsContent(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t, http.StatusOK, profileFields...)
	body, ct := multipartBody(t, nil, part{"photo", "logo.html", "image/png", pngBytes})

	w := ts.do(t, "/upload", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, ts.seen, 1)
	assert.Equal(t, ".png", ts.seen[0].Ext)
	assert.True(t, strings.HasSuffix(ts.seen[0].Name, ".png"), ts.seen[0].Name)
	assert.Equal(t, "image/png", ts.seen[0].ContentType)
}

func TestImages(t *testing.T) {
	t.Parallel()

	assert.True(t, Images("image/png"))
	assert.True(t, Images("image/jpeg"))
	assert.False(t, Images("image/svg+xml"))
	assert.False(t, Images("text/html"))
}

func TestGenerateName(t *testing.T) {
	t.Parallel()

	name := GenerateName("company logo", ts0, ".jpg")
	assert.True(t, strings.HasPrefix(name, "company_logo-1700000000000-"), name)
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.NotEqual(t, name, GenerateName("company logo", ts0, ".jpg"))
}

func TestExtension(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".pdf", extension("CV.PDF"))
	assert.Equal(t, "", extension("noext"))
	assert.Equal(t, "", extension("weird.p/d"))
	assert.Equal(t, "", extension("x.averyveryverylongext"))

	png := mimetype.Lookup("image/png")
	require.NotNil(t, png)
	assert.Equal(t, ".png", storedExtension("Me.PNG", png))
	assert.Equal(t, ".png", storedExtension("me.html", png))
	assert.Equal(t, ".png", storedExtension("noext", png))

	jpeg := mimetype.Lookup("image/jpeg")
	require.NotNil(t, jpeg)
	assert.Equal(t, ".jpeg", storedExtension("me.jpeg", jpeg))
	assert.Equal(t, ".jpg", storedExtension("me.svg", jpeg))
}

type countingObserver struct {
	mu     sync.Mutex
	counts map[string]int
}

func (o *countingObserver) ObserveUpload(field, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.counts[field+"/"+outcome]++
}

func TestGate_Observer(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	obs := &countingObserver{counts: map[string]int{}}

	r := gin.New()
	r.POST("/upload", Gate(Config{Store: store, MaxFileSize: 1024, Fields: profileFields, Observer: obs}), func(c *gin.Context) {
		if c.PostForm("fail") != "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "nope"})
			return
		}
		c.Status(http.StatusOK)
	})
	send := func(fields map[string]string, p part) int {
		body, ct := multipartBody(t, fields, p)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send(nil, part{"photo", "a.png", "image/png", pngBytes}))
	assert.Equal(t, http.StatusBadRequest, send(map[string]string{"fail": "1"}, part{"photo", "a.png", "image/png", pngBytes}))
	assert.Equal(t, http.StatusBadRequest, send(nil, part{"resume", "a.txt", "text/plain", []byte("hello")}))

	assert.Equal(t, map[string]int{
		"photo/stored":    2,
		"photo/removed":   1,
		"resume/rejected": 1,
	}, obs.counts)
}
