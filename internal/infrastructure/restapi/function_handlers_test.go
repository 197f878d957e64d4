package restapi

import (
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"massa_gateway/internal/app/port"
	"massa_gateway/internal/app/service"
	"massa_gateway/internal/domain/entity"
	massa "massa_gateway/internal/entity"
	"massa_gateway/internal/pkg/logger"
	"massa_gateway/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRPC struct {
	mu       sync.Mutex
	calls    []entity.NetworkSelector
	results  map[entity.NetworkSelector]string
	failures map[entity.NetworkSelector]error
}

func (s *stubRPC) Call(_ context.Context, network entity.NetworkSelector, _ string, _ ...any) (stdjson.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, network)
	if err := s.failures[network]; err != nil {
		return nil, err
	}
	return stdjson.RawMessage(s.results[network]), nil
}

type stubCourses struct{ course *entity.CourseGoal }

func (s stubCourses) GetCourseGoal(context.Context, string) (*entity.CourseGoal, error) {
	return s.course, nil
}

type stubGoals struct{ reply *massa.GoalsReply }

func (s stubGoals) PostMessage(context.Context, string, string, any) (*massa.GoalsReply, error) {
	return s.reply, nil
}

type panickingBalance struct{ port.BalanceService }

func (panickingBalance) GetBalance(context.Context, entity.AddressQuery) (*entity.BalanceResult, error) {
	panic("boom")
}

type testServer struct {
	router  *gin.Engine
	rpc     *stubRPC
	metrics *metrics.Metrics
}

func newTestServer(t *testing.T, rpc *stubRPC, goals port.GoalService) *testServer {
	t.Helper()
	if rpc.results == nil {
		rpc.results = map[entity.NetworkSelector]string{}
	}
	m := metrics.New(prometheus.NewRegistry())
	h := NewFunctionHandler(
		service.NewBalanceService(rpc, logger.Nop()),
		service.NewDatastoreService(rpc, logger.Nop()),
		goals,
	)
	return &testServer{router: SetupRouter(h, RouterOptions{Metrics: m}), rpc: rpc, metrics: m}
}

func defaultGoals(courses port.CourseRepository, reply *massa.GoalsReply) port.GoalService {
	return service.NewGoalService(courses, stubGoals{reply: reply}, nil, logger.Nop())
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type", w.Header().Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "POST, GET, OPTIONS, PUT, DELETE", w.Header().Get("Access-Control-Allow-Methods"))
}

func TestPreflightIsBare200(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	for _, path := range []string{"/functions/v1/check-massa-balance", "/functions/v1/read-smart-contract"} {
		w := s.do(http.MethodOptions, path, "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assertCORS(t, w)
	}
	assert.Empty(t, s.rpc.calls)
}

func TestNonPostIs405(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := s.do(method, "/functions/v1/check-massa-balance", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
		assertCORS(t, w)
		body := decode(t, w)
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "Method not allowed. Please use POST request.", body["message"])
	}
	assert.Empty(t, s.rpc.calls)
}

func TestCheckBalanceMissingMessage(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/check-massa-balance", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertCORS(t, w)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, service.MsgBalanceAddressRequired, body["message"])
	assert.Empty(t, s.rpc.calls)
}

func TestCheckBalanceMalformedBody(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	for _, body := range []string{"", "{not json", `{"message": 12}`} {
		w := s.do(http.MethodPost, "/functions/v1/check-massa-balance", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
	assert.Empty(t, s.rpc.calls)
}

func TestCheckBalanceSuccess(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{
		entity.Mainnet: `[{"address":"AU12abc","candidate_balance":"1500000000","final_balance":"1"}]`,
	}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/check-massa-balance", `{"message":"AU12abc"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assertCORS(t, w)
	assert.JSONEq(t, `{
		"status": "success",
		"data": {"address":"AU12abc","network":"mainnet","final":false,"rawBalance":"1500000000","formattedBalance":"1.5"}
	}`, w.Body.String())
	assert.Equal(t, []entity.NetworkSelector{entity.Mainnet}, rpc.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.FunctionRequests.WithLabelValues("check-massa-balance", "200")))
}

func TestCheckBalanceFinalOnBuildnet(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{
		entity.Buildnet: `[{"address":"AU1","candidate_balance":"0","final_balance":"2.75"}]`,
	}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/check-massa-balance", `{"message":"AU1","network":"buildnet","final":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "2750000000", data["rawBalance"])
	assert.Equal(t, "2.75", data["formattedBalance"])
	assert.Equal(t, "buildnet", data["network"])
}

func TestCheckBalanceErrors(t *testing.T) {
	tests := []struct {
		name    string
		rpc     *stubRPC
		body    string
		status  int
		message string
	}{
		{
			name: "rpc error",
			rpc: &stubRPC{failures: map[entity.NetworkSelector]error{
				entity.Mainnet: &entity.ServiceError{Kind: entity.KindRpcError, Message: "invalid address checksum"},
			}},
			body:    `{"message":"AUbad"}`,
			status:  http.StatusBadRequest,
			message: "Invalid Massa address or RPC error: invalid address checksum",
		},
		{
			name:    "address not found",
			rpc:     &stubRPC{results: map[entity.NetworkSelector]string{entity.Mainnet: `[]`}},
			body:    `{"message":"AU1"}`,
			status:  http.StatusBadRequest,
			message: "Address not found or invalid",
		},
		{
			name: "upstream down",
			rpc: &stubRPC{failures: map[entity.NetworkSelector]error{
				entity.Mainnet: &entity.ServiceError{Kind: entity.KindTransportError, Message: "RPC request to mainnet failed with HTTP status 503", UpstreamStatus: 503},
			}},
			body:    `{"message":"AU1"}`,
			status:  http.StatusBadGateway,
			message: "RPC request to mainnet failed with HTTP status 503",
		},
		{
			name:   "unknown network",
			rpc:    &stubRPC{},
			body:   `{"message":"AU1","network":"devnet"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "garbage balance",
			rpc:    &stubRPC{results: map[entity.NetworkSelector]string{entity.Mainnet: `[{"address":"AU1","candidate_balance":"lots"}]`}},
			body:   `{"message":"AU1"}`,
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.rpc, defaultGoals(stubCourses{}, nil))
			w := s.do(http.MethodPost, "/functions/v1/check-massa-balance", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assertCORS(t, w)
			body := decode(t, w)
			assert.Equal(t, "error", body["status"])
			if tt.message != "" {
				assert.Equal(t, tt.message, body["message"])
			}
		})
	}
}

func TestCheckBalanceAllPartialFailure(t *testing.T) {
	rpc := &stubRPC{
		results: map[entity.NetworkSelector]string{entity.Buildnet: `[{"address":"AU1","candidate_balance":"1000000000"}]`},
		failures: map[entity.NetworkSelector]error{
			entity.Mainnet: &entity.ServiceError{Kind: entity.KindTransportError, Message: "RPC request to mainnet failed"},
		},
	}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/check-massa-balance-all", `{"message":"AU1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Nil(t, data["mainnet"])
	assert.Equal(t, "1", data["buildnet"].(map[string]any)["formattedBalance"])
	assert.Equal(t, "RPC request to mainnet failed", data["errors"].(map[string]any)["mainnet"])
	assert.Len(t, rpc.calls, 2)
}

func TestReadSmartContractSuccess(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{
		entity.Buildnet: `[{"address":"AS1","candidate_sce_ledger_info":{"datastore":{"110,97,109,101,95,107,101,121":[72,105]}}}]`,
	}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/read-smart-contract", `{"message":"AS1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{
		"status": "success",
		"message": "Smart contract data retrieved successfully",
		"data": {
			"contractAddress": "AS1",
			"dataKey": "name_key",
			"foundKey": "110,97,109,101,95,107,101,121",
			"rawValue": [72,105],
			"decodedValue": "Hi",
			"network": "buildnet"
		}
	}`, w.Body.String())
	assert.Equal(t, []entity.NetworkSelector{entity.Buildnet}, rpc.calls)
}

func TestReadSmartContractKeyNotFound(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{
		entity.Buildnet: `[{"address":"AS1","candidate_sce_ledger_info":{"datastore":{"1,2,3":[1]}}}]`,
	}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/read-smart-contract", `{"message":"AS1","dataKey":"greeting"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{
		"status": "error",
		"message": "Datastore key 'greeting' doesn't exist in contract 'AS1'",
		"availableKeys": ["1,2,3"]
	}`, w.Body.String())
}

func TestReadSmartContractEmptyDatastoreStillListsKeys(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{
		entity.Buildnet: `[{"address":"AS1","candidate_sce_ledger_info":{"datastore":{}}}]`,
	}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/read-smart-contract", `{"message":"AS1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, []any{}, body["availableKeys"])
}

func TestReadSmartContractNoDatastore(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{entity.Buildnet: `[{"address":"AS1"}]`}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/read-smart-contract", `{"message":"AS1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No smart contract datastore found at this address", decode(t, w)["message"])
	_, hasKeys := decode(t, w)["availableKeys"]
	assert.False(t, hasKeys)
}

func TestPanicBecomes500(t *testing.T) {
	h := NewFunctionHandler(panickingBalance{}, nil, nil)
	router := SetupRouter(h, RouterOptions{})

	req := httptest.NewRequest(http.MethodPost, "/functions/v1/check-massa-balance", strings.NewReader(`{"message":"AU1"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertCORS(t, w)
	body := decode(t, w)
	assert.Equal(t, "error", body["status"])
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestCourseMessageRelay(t *testing.T) {
	course := &entity.CourseGoal{CourseID: "42", GoalsURL: "https://goals.example"}
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{course: course}, &massa.GoalsReply{
		StatusCode: 200, Status: "OK", Body: []byte(`{"goalReached":true,"feedback":"nice"}`),
	}))

	w := s.do(http.MethodPost, "/functions/v1/course-message-handler", `{"message":"hi","courseId":42}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"success","data":{"goalReached":true,"feedback":"nice"}}`, w.Body.String())
}

func TestCourseMessageWebhookFailureIs502(t *testing.T) {
	course := &entity.CourseGoal{CourseID: "42", GoalsURL: "https://goals.example"}
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{course: course}, &massa.GoalsReply{
		StatusCode: 500, Status: "Internal Server Error", Body: []byte(`{"error":"model offline"}`),
	}))

	w := s.do(http.MethodPost, "/functions/v1/course-message-handler", `{"message":"hi","courseId":"42"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "model offline", decode(t, w)["message"])
}

func TestCourseMessageValidationAndLookup(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/course-message-handler", `{"courseId":"1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgGoalMessageRequired, decode(t, w)["message"])

	w = s.do(http.MethodPost, "/functions/v1/course-message-handler", `{"message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.MsgCourseIDRequired, decode(t, w)["message"])

	w = s.do(http.MethodPost, "/functions/v1/course-message-handler", `{"message":"hi","courseId":"1"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Course not found", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/functions/v1/course-message-handler", `{"message":"hi","courseId":{"id":1}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseTitle(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/course-handler", `{"message":"Intro to Massa"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","message":"Course \"Intro to Massa\" processed successfully"}`, w.Body.String())

	w = s.do(http.MethodPost, "/functions/v1/course-handler", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required field: message", decode(t, w)["message"])

	w = s.do(http.MethodPost, "/functions/v1/course-handler", `{"message":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Course title cannot be empty", decode(t, w)["message"])
}

func TestRateLimit(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{entity.Mainnet: `[{"address":"AU1","candidate_balance":"1"}]`}}
	h := NewFunctionHandler(service.NewBalanceService(rpc, logger.Nop()), nil, nil)
	router := SetupRouter(h, RouterOptions{RequestsPerMinute: 1})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/functions/v1/check-massa-balance", strings.NewReader(`{"message":"AU1"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send().Code)
	w := send()
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assertCORS(t, w)
	assert.Equal(t, "error", decode(t, w)["status"])
	assert.Len(t, rpc.calls, 1)
}

func TestHealthzAndRequestID(t *testing.T) {
	router := SetupRouter(NewFunctionHandler(nil, nil, nil), RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
}

func TestStatusForKind(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusForKind(entity.KindInvalidNetwork))
	assert.Equal(t, http.StatusNotFound, StatusForKind(entity.KindCourseNotFound))
	assert.Equal(t, http.StatusBadGateway, StatusForKind(entity.KindInvalidResponse))
	assert.Equal(t, http.StatusInternalServerError, StatusForKind(entity.KindInternalError))
	assert.Equal(t, http.StatusInternalServerError, StatusForKind("Unheard"))
}

func TestOperationalRoutes(t *testing.T) {
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	router := SetupRouter(NewFunctionHandler(nil, nil, nil), RouterOptions{
		MetricsPath:    "/metrics",
		MetricsHandler: metricsHandler,
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	withPprof := SetupRouter(NewFunctionHandler(nil, nil, nil), RouterOptions{EnablePprof: true})
	w = httptest.NewRecorder()
	withPprof.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/goroutine?debug=1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCheckBalanceUnquotedBalance(t *testing.T) {
	rpc := &stubRPC{results: map[entity.NetworkSelector]string{
		entity.Mainnet: `[{"address":"AU1","candidate_balance":1500000000,"final_balance":2.75}]`,
	}}
	s := newTestServer(t, rpc, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodPost, "/functions/v1/check-massa-balance", `{"message":"AU1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]any)
	assert.Equal(t, "1500000000", data["rawBalance"])
	assert.Equal(t, "1.5", data["formattedBalance"])

	w = s.do(http.MethodPost, "/functions/v1/check-massa-balance", `{"message":"AU1","final":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2750000000", decode(t, w)["data"].(map[string]any)["rawBalance"])
}

type recordingCourses struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingCourses) GetCourseGoal(_ context.Context, id string) (*entity.CourseGoal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return &entity.CourseGoal{CourseID: id, GoalsURL: "https://goals.example"}, nil
}

func TestCourseMessageNumericCourseID(t *testing.T) {
	courses := &recordingCourses{}
	s := newTestServer(t, &stubRPC{}, defaultGoals(courses, &massa.GoalsReply{
		StatusCode: 200, Status: "OK", Body: []byte(`{"ok":true}`),
	}))

	for _, body := range []string{`{"message":"hi","courseId":42}`, `{"courseId":7,"message":"hi"}`} {
		w := s.do(http.MethodPost, "/functions/v1/course-message-handler", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	assert.Equal(t, []string{"42", "7"}, courses.ids)
}

func TestPanicOutsideFunctionsIs500(t *testing.T) {
	router := SetupRouter(NewFunctionHandler(nil, nil, nil), RouterOptions{
		MetricsPath: "/metrics",
		MetricsHandler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("collector exploded")
		}),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", decode(t, w)["status"])
	assert.NotContains(t, w.Body.String(), "collector exploded")
}

func TestPreflightIsCounted(t *testing.T) {
	s := newTestServer(t, &stubRPC{}, defaultGoals(stubCourses{}, nil))

	w := s.do(http.MethodOptions, "/functions/v1/check-massa-balance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.FunctionRequests.WithLabelValues("check-massa-balance", "200")))
}
