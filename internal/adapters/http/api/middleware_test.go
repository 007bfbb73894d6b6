package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRouteNaming(t *testing.T) {
	Convey("Given route patterns", t, func() {
		So(endpointName("/config"), ShouldEqual, "config")
		So(endpointName("/jobs/{jobid}/config"), ShouldEqual, "jobs_jobid_config")
		So(endpointName("/"), ShouldEqual, "root")

		So(pathParamNames("/config"), ShouldBeEmpty)
		So(pathParamNames("/jobs/{jobid}/vertices/{vertexid}"), ShouldResemble, []string{"jobid", "vertexid"})
		So(pathParamNames("/files/{path...}"), ShouldResemble, []string{"path"})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given HTTP status codes", t, func() {
		So(getErrorType(503), ShouldEqual, "unavailable")
		So(getErrorType(500), ShouldEqual, "server_error")
		So(getErrorType(429), ShouldEqual, "rate_limit")
		So(getErrorType(404), ShouldEqual, "not_found")
		So(getErrorType(400), ShouldEqual, "client_error")
		So(getErrorSeverity(502), ShouldEqual, "high")
		So(getErrorSeverity(405), ShouldEqual, "medium")
		So(getErrorSeverity(200), ShouldEqual, "low")
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given the request id middleware", t, func() {
		var seen string
		h := RequestIDMiddleware(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
		})

		Convey("When the incoming id is too long", func() {
			req := httptest.NewRequest(http.MethodGet, "/config", nil)
			req.Header.Set(requestIDHeader, strings.Repeat("x", maxIncomingRequestIDBytes+1))
			w := httptest.NewRecorder()
			h(w, req)

			Convey("Then a fresh id replaces it", func() {
				So(len(seen), ShouldEqual, 36)
				So(w.Header().Get(requestIDHeader), ShouldEqual, seen)
			})
		})
	})
}
