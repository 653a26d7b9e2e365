package validation

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type signupShape struct {
	Name        string `json:"name" binding:"required,notblank"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	RoleID      uint   `json:"roleId" binding:"omitempty,oneof=1 2 3"`
	CompanyName string `json:"companyName" binding:"required_if=RoleID 2"`
}

type profileForm struct {
	FullName       string `form:"fullName" binding:"required"`
	GraduationYear int    `form:"graduationYear" binding:"omitempty,gte=1990,lte=2100"`
}

func newJSONRouter() *gin.Engine {
	r := gin.New()
	r.POST("/signup", JSON[signupShape](), func(c *gin.Context) {
		p, ok := Payload[signupShape](c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": p.Name})
	})
	return r
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

type fieldErrs struct {
	Error []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"error"`
}

func fieldsOf(t *testing.T, body []byte) []string {
	t.Helper()
	var resp fieldErrs
	require.NoError(t, json.Unmarshal(body, &resp))
	out := make([]string, 0, len(resp.Error))
	for _, e := range resp.Error {
		out = append(out, e.Field)
	}
	return out
}

func TestJSON_ListsEveryViolatedField(t *testing.T) {
	t.Parallel()

	w := postJSON(newJSONRouter(), `{"password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"name", "email", "password"}, fieldsOf(t, w.Body.Bytes()))
	assert.Contains(t, w.Body.String(), "password must be at least 8 characters")
}

func TestJSON_CrossFieldRule(t *testing.T) {
	t.Parallel()

	r := newJSONRouter()

	w := postJSON(r, `{"name":"Acme HR","email":"hr@acme.io","password":"longenough","roleId":2}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []string{"companyName"}, fieldsOf(t, w.Body.Bytes()))

	w = postJSON(r, `{"name":"Acme HR","email":"hr@acme.io","password":"longenough","roleId":2,"companyName":"Acme"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"name":"Acme HR"}`, w.Body.String())
}

func TestJSON_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest, `{"error":"malformed request body"}`},
		{"empty body", ``, http.StatusBadRequest, `{"error":"request body is required"}`},
		{"wrong type", `{"roleId":"two"}`, http.StatusBadRequest, `{"error":[
			{"field":"roleId","message":"roleId must be of type uint"},
			{"field":"name","message":"name is required"},
			{"field":"email","message":"email is required"},
			{"field":"password","message":"password is required"}]}`},
		{"top level array", `[1,2]`, http.StatusBadRequest, `{"error":"malformed request body"}`},
		{"blank name", `{"name":"   ","email":"a@b.io","password":"12345678"}`, http.StatusBadRequest, `{"error":[{"field":"name","message":"name must not be blank"}]}`},
		{"bad role", `{"name":"a","email":"a@b.io","password":"12345678","roleId":9}`, http.StatusBadRequest, `{"error":[{"field":"roleId","message":"roleId must be one of: 1 2 3"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := postJSON(newJSONRouter(), tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestJSON_TypeErrorKeepsOtherViolations(t *testing.T) {
	t.Parallel()

	w := postJSON(newJSONRouter(), `{"email":42,"password":"short"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"email", "password", "name"}, fieldsOf(t, w.Body.Bytes()))
	assert.Contains(t, w.Body.String(), "email must be of type string")
	assert.Contains(t, w.Body.String(), "password must be at least 8 characters")
	assert.NotContains(t, w.Body.String(), "email is required")
}

func TestRespond_InvalidValidation(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	Respond(c, &validator.InvalidValidationError{})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

func TestForm_Multipart(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/profile", Form[profileForm](), func(c *gin.Context) {
		p, _ := Payload[profileForm](c)
		c.JSON(http.StatusOK, gin.H{"fullName": p.FullName, "year": p.GraduationYear})
	})

	send := func(fields map[string]string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		for k, v := range fields {
			require.NoError(t, mw.WriteField(k, v))
		}
		require.NoError(t, mw.Close())
		req := httptest.NewRequest(http.MethodPost, "/profile", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := send(map[string]string{"fullName": "Asha Rao", "graduationYear": "2027"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"fullName":"Asha Rao","year":2027}`, w.Body.String())

	w = send(map[string]string{"graduationYear": "1800"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.ElementsMatch(t, []string{"fullName", "graduationYear"}, fieldsOf(t, w.Body.Bytes()))

	w = send(map[string]string{"graduationYear": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":[
		{"field":"graduationYear","message":"graduationYear must be of type int"},
		{"field":"fullName","message":"fullName is required"}]}`, w.Body.String())
}

func TestForm_URLEncodedConversionError(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.POST("/profile", Form[profileForm](), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/profile", strings.NewReader("fullName=Asha&graduationYear=20x7"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":[{"field":"graduationYear","message":"graduationYear must be of type int"}]}`, w.Body.String())
}

type pageQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=open closed"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

func TestQuery_ConversionAndRuleErrors(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.GET("/items", Query[pageQuery](), func(c *gin.Context) {
		p, _ := Payload[pageQuery](c)
		c.JSON(http.StatusOK, gin.H{"limit": p.Limit})
	})

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantFields []string
	}{
		{"valid", "?status=open&limit=10", http.StatusOK, nil},
		{"limit not a number", "?limit=ten", http.StatusBadRequest, []string{"limit"}},
		{"limit not a number and bad status", "?limit=ten&status=draft", http.StatusBadRequest, []string{"limit", "status"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantFields != nil {
				assert.ElementsMatch(t, tt.wantFields, fieldsOf(t, w.Body.Bytes()))
			}
		})
	}
}

func TestPayload_Missing(t *testing.T) {
	t.Parallel()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, ok := Payload[signupShape](c)
	assert.False(t, ok)

	c.Set(ContextPayload, &profileForm{})
	_, ok = Payload[signupShape](c)
	assert.False(t, ok)
}
