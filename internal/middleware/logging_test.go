package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	logger, hook := test.NewNullLogger()

	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/fieldtypes", nil))
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.InfoLevel || entry.Data["status"] != http.StatusTeapot || entry.Data["path"] != "/fieldtypes" {
		t.Fatalf("unexpected log entry %+v", entry)
	}

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/broken", nil))
	entry = hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel || entry.Data["method"] != http.MethodPost {
		t.Fatalf("unexpected log entry %+v", entry)
	}
	if len(hook.AllEntries()) != 2 {
		t.Fatalf("expected one entry per request, got %d", len(hook.AllEntries()))
	}
}
