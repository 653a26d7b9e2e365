// Package upload implements the multipart upload gate and the file stores
// it writes to.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"internship_backend/internal/api"
)

// ContextFiles is the gin context key holding []File for the request.
const ContextFiles = "uploadedFiles"

// maxMemory は ParseMultipartForm がメモリに保持する上限。超過分は一時ファイル。
const maxMemory = 8 << 20

// Predicate decides whether a MIME type is accepted.
type Predicate func(mimeType string) bool

// MIMEPrefix accepts types starting with prefix, e.g. "image/".
func MIMEPrefix(prefix string) Predicate {
	return func(m string) bool { return strings.HasPrefix(m, prefix) }
}

// MIMEExact accepts exactly the listed types.
func MIMEExact(types ...string) Predicate {
	return func(m string) bool {
		for _, t := range types {
			if m == t {
				return true
			}
		}
		return false
	}
}

// AnyOf accepts a type when any predicate does.
func AnyOf(ps ...Predicate) Predicate {
	return func(m string) bool {
		for _, p := range ps {
			if p(m) {
				return true
			}
		}
		return false
	}
}

// Images accepts image/* except SVG, which can carry script.
var Images Predicate = func(m string) bool {
	return strings.HasPrefix(m, "image/") && m != "image/svg+xml"
}

// PDF accepts application/pdf.
var PDF = MIMEExact("application/pdf")

// FieldSpec declares an expected file field.
type FieldSpec struct {
	Name     string
	MaxCount int
	// Accept overrides Config.Accept for this field when set.
	Accept Predicate
}

// Observer is told what happened to each file part.
// outcome is "stored", "rejected" or "removed".
type Observer interface {
	ObserveUpload(field, outcome string)
}

// Config configures a Gate.
type Config struct {
	Store       FileStore
	MaxFileSize int64
	Accept      Predicate
	Observer    Observer
	// Fields lists the expected file fields. Empty means any field name is
	// accepted with at most MaxFilesPerField files each.
	Fields           []FieldSpec
	MaxFilesPerField int
}

// File references a stored upload.
type File struct {
	Field        string `json:"fieldName"`
	Name         string `json:"generatedFileName"`
	Ext          string `json:"originalExtension"`
	OriginalName string `json:"-"`
	ContentType  string `json:"-"`
	Size         int64  `json:"-"`
}

// Error is an upload rejection with its HTTP status.
type Error struct {
	Status  int
	Message string
	Field   string
}

func (e *Error) Error() string { return e.Message }

func rejected(msg string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(msg, args...)}
}

func (e *Error) on(field string) *Error {
	e.Field = field
	return e
}

var (
	safeField = regexp.MustCompile(`[^A-Za-z0-9_]`)
	safeExt   = regexp.MustCompile(`^\.[a-z0-9]{1,10}$`)
)

type gate struct {
	cfg    Config
	fields map[string]FieldSpec
	now    func() time.Time
}

// Gate parses a multipart request, checks every file part, stores accepted
// files and puts []File on the context. Stored files are removed again when
// the rest of the chain ends with status >= 400 or panics.
func Gate(cfg Config) gin.HandlerFunc {
	if cfg.Store == nil {
		panic("upload: Config.Store is required")
	}
	if cfg.Accept == nil {
		cfg.Accept = func(string) bool { return true }
	}
	if cfg.MaxFilesPerField <= 0 {
		cfg.MaxFilesPerField = 1
	}
	g := &gate{cfg: cfg, fields: make(map[string]FieldSpec, len(cfg.Fields)), now: time.Now}
	for _, f := range cfg.Fields {
		if f.MaxCount <= 0 {
			f.MaxCount = 1
		}
		g.fields[f.Name] = f
	}
	return g.handle
}

func (g *gate) maxBody() int64 {
	files := 0
	if len(g.fields) == 0 {
		files = 8 * g.cfg.MaxFilesPerField
	}
	for _, f := range g.fields {
		files += f.MaxCount
	}
	// フォーム値とヘッダー分の余裕
	return int64(files)*g.cfg.MaxFileSize + 1<<20
}

func (g *gate) handle(c *gin.Context) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		abort(c, rejected("multipart/form-data request required"))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, g.maxBody())
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			abort(c, &Error{Status: http.StatusRequestEntityTooLarge, Message: "request body too large"})
			return
		}
		abort(c, rejected("malformed multipart body"))
		return
	}

	planned, uerr := g.check(c.Request.MultipartForm)
	if uerr != nil {
		g.observe(uerr.Field, "rejected")
		slog.Warn("upload rejected", "error", uerr.Message, "status", uerr.Status,
			"path", c.FullPath(), "remote_addr", c.ClientIP())
		abort(c, uerr)
		return
	}

	stored, err := g.store(c.Request.Context(), planned)
	if err != nil {
		slog.Error("failed to store upload", "error", err, "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
		return
	}

	for _, f := range stored {
		g.observe(f.Field, "stored")
	}
	c.Set(ContextFiles, stored)

	defer func() {
		if r := recover(); r != nil {
			g.cleanup(c, stored)
			panic(r)
		}
	}()
	c.Next()
	if c.Writer.Status() >= http.StatusBadRequest {
		g.cleanup(c, stored)
	}
}

type plannedFile struct {
	file   File
	header *multipart.FileHeader
}

// check validates every part before anything is stored.
func (g *gate) check(form *multipart.Form) ([]plannedFile, *Error) {
	if form == nil {
		return nil, nil
	}

	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []plannedFile
	for _, field := range names {
		headers := form.File[field]
		accept, maxCount := g.cfg.Accept, g.cfg.MaxFilesPerField
		if len(g.fields) > 0 {
			spec, ok := g.fields[field]
			if !ok {
				return nil, rejected("unexpected file field %q", field).on(field)
			}
			maxCount = spec.MaxCount
			if spec.Accept != nil {
				accept = spec.Accept
			}
		}
		if len(headers) > maxCount {
			return nil, rejected("too many files for field %q (max %d)", field, maxCount).on(field)
		}

		for _, fh := range headers {
			if fh.Size > g.cfg.MaxFileSize {
				return nil, &Error{
					Status:  http.StatusRequestEntityTooLarge,
					Message: fmt.Sprintf("file for field %q exceeds %d bytes", field, g.cfg.MaxFileSize),
					Field:   field,
				}
			}
			sniffed, err := sniff(fh)
			if err != nil {
				return nil, rejected("unreadable file for field %q", field).on(field)
			}
			mt, _, _ := mime.ParseMediaType(sniffed.String())
			// 申告された型と実際の中身の両方が許可されている必要がある
			if !accept(mt) {
				return nil, rejected("file type %s is not allowed for field %q", mt, field).on(field)
			}
			if declared := declaredType(fh); declared != "" && !accept(declared) {
				return nil, rejected("file type %s is not allowed for field %q", declared, field).on(field)
			}
			out = append(out, plannedFile{
				header: fh,
				file: File{
					Field:        field,
					Ext:          storedExtension(fh.Filename, sniffed),
					OriginalName: fh.Filename,
					ContentType:  mt,
					Size:         fh.Size,
				},
			})
		}
	}
	return out, nil
}

// declaredType is the part's Content-Type, or "" when missing or generic.
func declaredType(fh *multipart.FileHeader) string {
	mt, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil || mt == "application/octet-stream" {
		return ""
	}
	return mt
}

// sniff detects the type from the file content.
func sniff(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mimetype.DetectReader(f)
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !safeExt.MatchString(ext) {
		return ""
	}
	return ext
}

// storedExtension keeps the original extension when it names the detected
// type (.jpeg for image/jpeg) and otherwise uses the type's own extension.
func storedExtension(filename string, m *mimetype.MIME) string {
	ext := extension(filename)
	if ext != "" {
		if ext == m.Extension() {
			return ext
		}
		mt, _, _ := mime.ParseMediaType(m.String())
		exts, _ := mime.ExtensionsByType(mt)
		for _, e := range exts {
			if e == ext {
				return ext
			}
		}
	}
	return m.Extension()
}

// GenerateName returns <field>-<unix-millis>-<random><ext>.
func GenerateName(field string, at time.Time, ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%d-%s%s", safeField.ReplaceAllString(field, "_"), at.UnixMilli(), random, ext)
}

func (g *gate) store(ctx context.Context, planned []plannedFile) ([]File, error) {
	stored := make([]File, 0, len(planned))
	for _, p := range planned {
		f := p.file
		f.Name = GenerateName(f.Field, g.now(), f.Ext)

		src, err := p.header.Open()
		if err != nil {
			g.deleteAll(ctx, stored)
			return nil, err
		}
		err = g.cfg.Store.Save(ctx, f.Name, src, f.Size, f.ContentType)
		_ = src.Close()
		if err != nil {
			g.deleteAll(ctx, stored)
			return nil, err
		}
		stored = append(stored, f)
	}
	return stored, nil
}

func (g *gate) cleanup(c *gin.Context, files []File) {
	if len(files) == 0 {
		return
	}
	// リクエストのコンテキストはタイムアウト済みの可能性がある
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 10*time.Second)
	defer cancel()
	g.deleteAll(ctx, files)
	for _, f := range files {
		g.observe(f.Field, "removed")
	}
	slog.Info("removed uploads of failed request", "count", len(files), "status", c.Writer.Status(), "path", c.FullPath())
}

func (g *gate) deleteAll(ctx context.Context, files []File) {
	for _, f := range files {
		if err := g.cfg.Store.Delete(ctx, f.Name); err != nil {
			slog.Error("failed to delete upload", "error", err, "file", f.Name)
		}
	}
}

func (g *gate) observe(field, outcome string) {
	if g.cfg.Observer != nil {
		g.cfg.Observer.ObserveUpload(field, outcome)
	}
}

func abort(c *gin.Context, e *Error) {
	c.AbortWithStatusJSON(e.Status, api.ErrorResponse{Error: e.Message})
}

// Files returns every file stored for the request.
func Files(c *gin.Context) []File {
	v, ok := c.Get(ContextFiles)
	if !ok {
		return nil
	}
	files, _ := v.([]File)
	return files
}

// First returns the first stored file of field.
func First(c *gin.Context, field string) (File, bool) {
	for _, f := range Files(c) {
		if f.Field == field {
			return f, true
		}
	}
	return File{}, false
}
