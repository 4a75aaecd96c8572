package validation

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type sampleForm struct {
	Title  string `form:"title" binding:"required,max=5"`
	Link   string `form:"pub_link" binding:"omitempty,url"`
	Status string `form:"status" binding:"omitempty,oneof=draft published"`
}

func bindSample(t *testing.T, values url.Values) Errors {
	t.Helper()
	gin.SetMode(gin.TestMode)
	Setup()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	var form sampleForm
	return FromBinding(c.ShouldBind(&form))
}

func TestFromBindingUsesFormNames(t *testing.T) {
	errs := bindSample(t, url.Values{"title": {"much too long"}, "pub_link": {"not a url"}, "status": {"weird"}})

	if got := errs.First("title"); got != "Ensure this value has at most 5 characters." {
		t.Fatalf("title error = %q", got)
	}
	if got := errs.First("pub_link"); got != "Enter a valid URL." {
		t.Fatalf("pub_link error = %q", got)
	}
	if got := errs.First("status"); !strings.Contains(got, "weird is not one of the available choices") {
		t.Fatalf("status error = %q", got)
	}
}

func TestFromBindingRequired(t *testing.T) {
	errs := bindSample(t, url.Values{})
	if got := errs.First("title"); got != "This field is required." {
		t.Fatalf("title error = %q", got)
	}
	if len(errs) != 1 {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestFromBindingValidInput(t *testing.T) {
	if errs := bindSample(t, url.Values{"title": {"ok"}}); errs.Any() {
		t.Fatalf("unexpected errors %v", errs)
	}
}

func TestFromBindingNonValidationError(t *testing.T) {
	errs := FromBinding(errors.New("malformed"))
	if errs.First(NonFieldKey) == "" {
		t.Fatalf("expected non-field error, got %v", errs)
	}
}

func TestBindFormTrimsBeforeValidating(t *testing.T) {
	gin.SetMode(gin.TestMode)
	values := url.Values{"title": {"   "}, "status": {" draft "}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	var form sampleForm
	errs := BindForm(c, &form)
	if got := errs.First("title"); got != "This field is required." {
		t.Fatalf("title error = %q", got)
	}
	if form.Status != "draft" || errs.First("status") != "" {
		t.Fatalf("status = %q, errors %v", form.Status, errs)
	}
}
