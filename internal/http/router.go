package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

// HandleHandler 支持 http.Handler 接口（用于 /metrics 等）
func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// ServeHTTP applies permissive CORS (any origin)
// and logs each request at debug level.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
	h.Set("Access-Control-Allow-Headers", "Content-Type, X-Session-Id")
	if req.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	r.mux.ServeHTTP(sw, req)
	r.logger.Debug("http request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", sw.status),
		zap.Duration("duration", time.Since(start)),
	)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// only 绑定单一方法
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			methodNotAllowed(w)
			return
		}
		h(w, req)
	}
}

// RegisterLegacyRoutes 注册与原有客户端同步协议一致的 /api/* 路由
func (r *Router) RegisterLegacyRoutes(l *LegacyHandler) {
	r.Handle("/api/state", only(http.MethodGet, l.State))
	r.Handle("/api/inventory", only(http.MethodPost, l.AddInventory))
	r.Handle("/api/inventory/consume", only(http.MethodPost, l.Consume))
	r.Handle("/api/requests", only(http.MethodPost, l.AddRequest))
	r.Handle("/api/session", only(http.MethodPost, l.AddSession))
}

// RegisterV1Routes 注册 /api/v1/* 扩展路由（Result 包装）
func (r *Router) RegisterV1Routes(a *APIHandler) {
	r.Handle("/api/v1/donations", only(http.MethodPost, a.AddDonation))
	r.Handle("/api/v1/donations/status", only(http.MethodGet, a.DonationStatus))
	r.Handle("/api/v1/transfers", only(http.MethodPost, a.AddTransfer))
	r.Handle("/api/v1/inventory/consume", only(http.MethodPost, a.Consume))
	r.Handle("/api/v1/requests", only(http.MethodPost, a.AddRequest))
	r.Handle("/api/v1/sessions", only(http.MethodPost, a.SaveSession))
	r.Handle("/api/v1/alerts", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodPost:
			a.RaiseAlert(w, req)
		case http.MethodGet:
			a.RecentAlerts(w, req)
		default:
			methodNotAllowed(w)
		}
	})
	r.Handle("/api/v1/matches", only(http.MethodGet, a.Matches))
	r.Handle("/api/v1/hospitals", only(http.MethodGet, a.Hospitals))
	r.Handle("/api/v1/shortage", only(http.MethodGet, a.Shortage))
	r.Handle("/api/v1/distance", only(http.MethodGet, a.Distance))
	r.Handle("/api/v1/inventory/export", only(http.MethodGet, a.ExportInventory))
	r.Handle("/api/v1/hospitals/import", only(http.MethodPost, a.ImportHospitals))
}

// RegisterOpsRoutes 注册 /healthz 与 /metrics
func (r *Router) RegisterOpsRoutes(health http.HandlerFunc, metrics http.Handler) {
	r.Handle("/healthz", only(http.MethodGet, health))
	if metrics != nil {
		r.HandleHandler("/metrics", metrics)
	}
}
