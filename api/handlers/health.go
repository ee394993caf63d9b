package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const readyCheckTimeout = 5 * time.Second

// HealthCheck 就绪探针中的一个依赖检查
type HealthCheck interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthStatus /health 与 /ready 的响应体
type HealthStatus struct {
	Status               string                 `json:"status"` // healthy, degraded, unhealthy
	Timestamp            time.Time              `json:"timestamp"`
	CredentialConfigured *bool                  `json:"credential_configured,omitempty"`
	Checks               map[string]CheckResult `json:"checks,omitempty"`
}

// CheckResult 单个检查结果
type CheckResult struct {
	Status  string `json:"status"` // pass, fail
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

func passed(latency time.Duration) CheckResult {
	return CheckResult{Status: "pass", Latency: latency.String()}
}

func failed(msg string, latency time.Duration) CheckResult {
	r := CheckResult{Status: "fail", Message: msg}
	if latency > 0 {
		r.Latency = latency.String()
	}
	return r
}

// HealthHandler 存活、就绪与版本端点
type HealthHandler struct {
	logger    *zap.Logger
	configErr func() error

	mu     sync.RWMutex
	checks []HealthCheck
}

// NewHealthHandler configErr 返回模型凭据的配置错误，nil 表示已就绪；参数本身可为 nil
func NewHealthHandler(configErr func() error, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{logger: logger.With(zap.String("component", "health")), configErr: configErr}
}

// RegisterCheck 追加就绪检查
func (h *HealthHandler) RegisterCheck(check HealthCheck) {
	h.mu.Lock()
	h.checks = append(h.checks, check)
	h.mu.Unlock()
}

func (h *HealthHandler) credential() (*bool, error) {
	if h.configErr == nil {
		return nil, nil
	}
	err := h.configErr()
	ok := err == nil
	return &ok, err
}

// HandleHealth 存活探针，进程存活即 200；凭据缺失时 status 为 degraded
//
// @Summary 健康检查
// @Tags 健康
// @Produce json
// @Success 200 {object} HealthStatus
// @Router /health [get]
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	configured, _ := h.credential()
	st := HealthStatus{Status: "healthy", Timestamp: time.Now().UTC(), CredentialConfigured: configured}
	if configured != nil && !*configured {
		st.Status = "degraded"
	}
	WriteJSON(w, http.StatusOK, st)
}

// HandleReady 就绪探针：凭据与全部已注册检查通过才返回 200，否则 503。
// 检查并发执行，共享 5 秒超时。
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checks := append([]HealthCheck(nil), h.checks...)
	h.mu.RUnlock()

	configured, cfgErr := h.credential()
	st := HealthStatus{
		Status:               "healthy",
		Timestamp:            time.Now().UTC(),
		CredentialConfigured: configured,
		Checks:               make(map[string]CheckResult, len(checks)+1),
	}
	switch {
	case configured == nil:
	case cfgErr != nil:
		st.Checks["credential"] = failed(cfgErr.Error(), 0)
	default:
		st.Checks["credential"] = passed(0)
	}

	results := h.runChecks(r.Context(), checks)
	for i, c := range checks {
		st.Checks[c.Name()] = results[i]
	}

	code := http.StatusOK
	for _, res := range st.Checks {
		if res.Status != "pass" {
			st.Status, code = "unhealthy", http.StatusServiceUnavailable
			break
		}
	}
	WriteJSON(w, code, st)
}

func (h *HealthHandler) runChecks(parent context.Context, checks []HealthCheck) []CheckResult {
	ctx, cancel := context.WithTimeout(parent, readyCheckTimeout)
	defer cancel()

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			start := time.Now()
			err := c.Check(ctx)
			took := time.Since(start)
			if err != nil {
				h.logger.Warn("readiness check failed",
					zap.String("check", c.Name()), zap.Duration("latency", took), zap.Error(err))
				results[i] = failed(err.Error(), took)
				return nil
			}
			results[i] = passed(took)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// HandleVersion 返回构建信息
func (h *HealthHandler) HandleVersion(version, buildTime, gitCommit string) http.HandlerFunc {
	info := map[string]string{
		"version":    version,
		"build_time": buildTime,
		"git_commit": gitCommit,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		WriteSuccess(w, r, info)
	}
}

// FuncHealthCheck 用函数实现 HealthCheck，例如 Redis PING
type FuncHealthCheck struct {
	name  string
	check func(ctx context.Context) error
}

// NewFuncHealthCheck 创建函数式健康检查
func NewFuncHealthCheck(name string, check func(ctx context.Context) error) *FuncHealthCheck {
	return &FuncHealthCheck{name: name, check: check}
}

func (c *FuncHealthCheck) Name() string { return c.name }

func (c *FuncHealthCheck) Check(ctx context.Context) error { return c.check(ctx) }
