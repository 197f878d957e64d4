package restapi

import (
	"net/http"
	"net/http/pprof"

	"massa_gateway/internal/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions configures SetupRouter. MetricsHandler is mounted at
// MetricsPath when both are set.
type RouterOptions struct {
	Logger            *zap.Logger
	Metrics           *metrics.Metrics
	RequestsPerMinute int64
	MetricsPath       string
	MetricsHandler    http.Handler
	// EnablePprof mounts the runtime profiler under /debug/pprof. Keep it off
	// on public listeners.
	EnablePprof bool
}

// SetupRouter builds the gin engine with the function routes and the
// operational endpoints.
func SetupRouter(h *FunctionHandler, opts RouterOptions) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestLogger(logger), Recovery(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		router.GET(opts.MetricsPath, gin.WrapH(opts.MetricsHandler))
	}

	if opts.EnablePprof {
		registerPprof(router.Group("/debug/pprof"))
	}

	// FunctionMetrics wraps everything so preflights and panics are counted too.
	functions := router.Group("/functions/v1")
	functions.Use(
		FunctionMetrics(opts.Metrics),
		CORSHeaders(),
		Recovery(logger),
		PostOnly(),
		RateLimit(opts.RequestsPerMinute),
	)
	{
		functions.Any("/check-massa-balance", h.CheckBalance)
		functions.Any("/check-massa-balance-all", h.CheckBalanceAll)
		functions.Any("/read-smart-contract", h.ReadSmartContract)
		functions.Any("/course-message-handler", h.CourseMessage)
		functions.Any("/course-handler", h.CourseTitle)
	}

	return router
}

func registerPprof(g *gin.RouterGroup) {
	g.GET("/", gin.WrapF(pprof.Index))
	g.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	g.GET("/profile", gin.WrapF(pprof.Profile))
	g.POST("/symbol", gin.WrapF(pprof.Symbol))
	g.GET("/symbol", gin.WrapF(pprof.Symbol))
	g.GET("/trace", gin.WrapF(pprof.Trace))
	for _, name := range []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"} {
		g.GET("/"+name, gin.WrapH(pprof.Handler(name)))
	}
}
