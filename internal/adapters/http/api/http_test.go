package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/nur12play/Analiticpplatform/internal/adapters/http/api"
	"github.com/nur12play/Analiticpplatform/internal/adapters/repository"
	service "github.com/nur12play/Analiticpplatform/internal/app"
	"github.com/nur12play/Analiticpplatform/internal/domain/model"
	"github.com/nur12play/Analiticpplatform/internal/domain/query"
	"github.com/nur12play/Analiticpplatform/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// brokenDeps fails every call with err.
type brokenDeps struct{ err error }

func (b brokenDeps) Series(context.Context, query.Series) ([]model.Point, error) {
	return nil, b.err
}

func (b brokenDeps) Metrics(context.Context, query.Metrics) (model.Summary, error) {
	return model.Summary{}, b.err
}

func (b brokenDeps) Ping(context.Context) error { return b.err }

// panicDeps panics on reads.
type panicDeps struct{ brokenDeps }

func (panicDeps) Series(context.Context, query.Series) ([]model.Point, error) {
	panic("boom")
}

func newTestServer(deps api.Dependencies, opts ...api.Option) *httptest.Server {
	srv := api.NewServer(deps, opts...)
	return httptest.NewServer(srv.Router(context.Background()))
}

func seededService() *service.Service {
	store := repository.NewMemoryStore()
	err := store.Insert(context.Background(), []model.Measurement{
		{Timestamp: jan1.Add(3 * time.Hour), Values: map[model.Field]float64{model.Field1: 30, model.Field2: 70}},
		{Timestamp: jan1.Add(1 * time.Hour), Values: map[model.Field]float64{model.Field1: 10, model.Field2: 50}},
		{Timestamp: jan1.Add(2 * time.Hour), Values: map[model.Field]float64{model.Field1: 20}},
	})
	if err != nil {
		panic(err)
	}
	return service.New(service.WithStore(store))
}

func get(ts *httptest.Server, path string) (*http.Response, []byte) {
	resp, err := http.Get(ts.URL + path)
	So(err, ShouldBeNil)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	So(err, ShouldBeNil)
	return resp, body
}

type apiError struct {
	Code    string `json:"code"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

func decodeError(body []byte) apiError {
	var e apiError
	So(json.Unmarshal(body, &e), ShouldBeNil)
	return e
}

func TestMeasurementsSeries(t *testing.T) {
	Convey("Given an API backed by three records on 2025-01-01", t, func() {
		ts := newTestServer(seededService())
		defer ts.Close()

		Convey("When requesting the field1 series for that day", func() {
			resp, body := get(ts, "/measurements?field=field1&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then it should return ordered items keyed by the field", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(resp.Header.Get("Content-Type"), ShouldStartWith, "application/json")

				var items []map[string]any
				So(json.Unmarshal(body, &items), ShouldBeNil)
				So(len(items), ShouldEqual, 3)
				So(items[0]["timestamp"], ShouldEqual, "2025-01-01T01:00:00.000Z")
				So(items[0]["field1"], ShouldEqual, 10.0)
				So(items[1]["field1"], ShouldEqual, 20.0)
				So(items[2]["field1"], ShouldEqual, 30.0)
				So(items[0], ShouldNotContainKey, "field2")
			})
		})

		Convey("When requesting a field that some records lack", func() {
			resp, body := get(ts, "/measurements?field=field2&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then only records with a value should be returned", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var items []map[string]any
				So(json.Unmarshal(body, &items), ShouldBeNil)
				So(len(items), ShouldEqual, 2)
			})
		})

		Convey("When requesting a range with no records", func() {
			resp, body := get(ts, "/measurements?field=field1&start_date=2025-02-01&end_date=2025-02-02")

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(decodeError(body).Code, ShouldEqual, "not_found")
			})
		})

		Convey("When the same request is repeated", func() {
			_, first := get(ts, "/measurements?field=field1&start_date=2025-01-01&end_date=2025-01-01")
			_, second := get(ts, "/measurements?field=field1&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then both bodies should be identical", func() {
				So(string(second), ShouldEqual, string(first))
			})
		})

		Convey("When using the /api prefix", func() {
			resp, _ := get(ts, "/api/measurements?field=field1&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then the same route should answer", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})
	})
}

func TestMeasurementsValidation(t *testing.T) {
	Convey("Given an API backed by an empty store", t, func() {
		ts := newTestServer(service.New())
		defer ts.Close()

		cases := []struct {
			name string
			path string
			code string
			msg  string
		}{
			{"unknown field", "/measurements?field=field4&start_date=2025-01-01&end_date=2025-01-02", "invalid_field", "field1, field2, field3"},
			{"missing field", "/measurements?start_date=2025-01-01&end_date=2025-01-02", "invalid_field", "Allowed"},
			{"bad date", "/measurements?field=field1&start_date=2025-13-40&end_date=2025-01-02", "invalid_date_format", "YYYY-MM-DD"},
			{"missing range", "/measurements?field=field1", "missing_date_range", ""},
			{"one-sided range", "/measurements?field=field1&start_date=2025-01-01", "missing_date_range", ""},
			{"reversed range", "/measurements?field=field1&start_date=2025-01-03&end_date=2025-01-01", "invalid_range", "start_date"},
			{"metrics unknown field", "/measurements/metrics?field=FIELD1", "invalid_field", ""},
			{"metrics one-sided range", "/measurements/metrics?field=field1&end_date=2025-01-01", "incomplete_date_range", ""},
			{"metrics bad date", "/measurements/metrics?field=field1&start_date=01-01-2025&end_date=2025-01-02", "invalid_date_format", ""},
			{"metrics reversed range", "/measurements/metrics?field=field1&start_date=2025-01-03&end_date=2025-01-01", "invalid_range", ""},
		}

		for _, tc := range cases {
			tc := tc
			Convey("When the request has "+tc.name, func() {
				resp, body := get(ts, tc.path)

				Convey("Then it should return 400 with code "+tc.code, func() {
					So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
					e := decodeError(body)
					So(e.Code, ShouldEqual, tc.code)
					So(e.Error, ShouldNotBeEmpty)
					So(e.Error, ShouldContainSubstring, tc.msg)
				})
			})
		}
	})
}

func TestMeasurementsMetrics(t *testing.T) {
	Convey("Given an API backed by field1 readings 10, 20 and 30", t, func() {
		ts := newTestServer(seededService())
		defer ts.Close()

		Convey("When requesting metrics for the day", func() {
			resp, body := get(ts, "/measurements/metrics?field=field1&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then it should return the rounded summary", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				var m map[string]float64
				So(json.Unmarshal(body, &m), ShouldBeNil)
				So(m, ShouldResemble, map[string]float64{"avg": 20, "min": 10, "max": 30, "stdDev": 8.165})
			})
		})

		Convey("When requesting metrics without dates", func() {
			resp, _ := get(ts, "/measurements/metrics?field=field2")

			Convey("Then the whole collection should be summarized", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When requesting metrics with empty date parameters", func() {
			resp, _ := get(ts, "/measurements/metrics?field=field2&start_date=&end_date=")

			Convey("Then empty values should count as absent", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When requesting metrics for a field with no values", func() {
			resp, body := get(ts, "/measurements/metrics?field=field3")

			Convey("Then it should return 404", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
				So(decodeError(body).Code, ShouldEqual, "not_found")
			})
		})
	})
}

func TestStoreFailures(t *testing.T) {
	Convey("Given an API whose store is down", t, func() {
		cause := errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")
		ts := newTestServer(brokenDeps{err: cause})
		defer ts.Close()

		Convey("When requesting the series", func() {
			resp, body := get(ts, "/measurements?field=field1&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then it should return 500 with details", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
				e := decodeError(body)
				So(e.Code, ShouldEqual, "internal_error")
				So(e.Details, ShouldContainSubstring, "connection refused")
			})
		})

		Convey("When requesting metrics", func() {
			resp, _ := get(ts, "/measurements/metrics?field=field1")

			Convey("Then it should return 500", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			})
		})

		Convey("When checking health", func() {
			resp, body := get(ts, "/healthz")

			Convey("Then it should return 503", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusServiceUnavailable)
				So(string(body), ShouldContainSubstring, "unavailable")
			})
		})

		Convey("When validation fails before the store is reached", func() {
			resp, _ := get(ts, "/measurements?field=nope&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then it should still return 400", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusBadRequest)
			})
		})
	})

	Convey("Given a handler that panics", t, func() {
		ts := newTestServer(panicDeps{})
		defer ts.Close()

		Convey("When requesting the series", func() {
			resp, _ := get(ts, "/measurements?field=field1&start_date=2025-01-01&end_date=2025-01-01")

			Convey("Then the recoverer should answer 500", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	Convey("Given a healthy API", t, func() {
		ts := newTestServer(seededService())
		defer ts.Close()

		Convey("When checking /healthz and /api/health", func() {
			resp, body := get(ts, "/healthz")
			legacy, _ := get(ts, "/api/health")

			Convey("Then both should report ok", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, `"ok":true`)
				So(legacy.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When scraping /metrics after a query", func() {
			get(ts, "/measurements/metrics?field=field1")
			resp, body := get(ts, "/metrics")

			Convey("Then it should expose the request counters", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
				So(string(body), ShouldContainSubstring, "analytics_measurements_http_requests_total")
				So(string(body), ShouldContainSubstring, `endpoint="/measurements/metrics"`)
			})
		})

		Convey("When posting to a read-only route", func() {
			resp, err := http.Post(ts.URL+"/measurements?field=field1", "application/json", strings.NewReader("{}"))
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then it should return 405", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})

	Convey("Given an API with the metrics endpoint disabled", t, func() {
		ts := newTestServer(seededService(), api.WithMetricsEndpoint(false))
		defer ts.Close()

		Convey("When scraping /metrics", func() {
			resp, _ := get(ts, "/metrics")

			Convey("Then it should not be found", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRequestID(t *testing.T) {
	Convey("Given an API", t, func() {
		ts := newTestServer(seededService())
		defer ts.Close()

		Convey("When a request carries X-Request-ID", func() {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
			req.Header.Set(api.HeaderRequestID, "abc-123")
			resp, err := http.DefaultClient.Do(req)
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then it should be echoed", func() {
				So(resp.Header.Get(api.HeaderRequestID), ShouldEqual, "abc-123")
			})
		})

		Convey("When a request has no ID", func() {
			resp, _ := get(ts, "/healthz")

			Convey("Then one should be generated", func() {
				So(len(resp.Header.Get(api.HeaderRequestID)), ShouldEqual, 36)
			})
		})
	})
}
