package dialer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"retention/dialersync/internal/app/pkg/errorx"
)

const (
	DefaultTimeout = 15 * time.Second
	DefaultSource  = "retention"
)

// agentAPIPaths agent 侧 API 在不同版本部署中的常见路径
var agentAPIPaths = []string{
	"/agc/api.php",
	"/vicidial/agc/api.php",
}

// Config 外呼平台连接配置
type Config struct {
	BaseURL     string        // non-agent API 完整地址，例如 https://dialer.example.com/vicidial/non_agent_api.php
	AgentAPIURL string        // agent API 显式地址（可选，优先尝试）
	User        string        // API 用户
	Pass        string        // API 密码
	Source      string        // 调用来源标识
	Timeout     time.Duration // 单次调用超时
}

// Client 外呼平台 RPC 客户端
// 只负责发请求和规整返回，不判断成功/失败
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu       sync.Mutex
	agentURL string // 已探测到的 agent API 地址
}

// NewClient 创建客户端，缺少凭证返回 ConfigurationMissing
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errorx.ConfigMissing("dialer.base_url")
	}
	if cfg.User == "" {
		return nil, errorx.ConfigMissing("dialer.user")
	}
	if cfg.Pass == "" {
		return nil, errorx.ConfigMissing("dialer.pass")
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
	}, nil
}

// Call 调用 non-agent API
// 非 2xx 状态也返回结构化结果；只有网络层错误返回 error
func (c *Client) Call(ctx context.Context, function string, params Params) (*Result, error) {
	return c.post(ctx, c.cfg.BaseURL, function, params)
}

// CallAgent 调用 agent API
// 按候选地址依次尝试，遇到第一个非 404 的返回即停止，并缓存该地址
// 没有非 404 返回时：任一候选传输失败则返回该错误，否则返回最后一个 404 结果
func (c *Client) CallAgent(ctx context.Context, function string, params Params) (*Result, error) {
	var (
		lastResult *Result
		lastErr    error
	)

	for _, endpoint := range c.agentCandidates() {
		res, err := c.post(ctx, endpoint, function, params)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		if res.HTTPStatus == http.StatusNotFound {
			c.forgetAgentURL(endpoint)
			lastResult = res
			continue
		}

		c.rememberAgentURL(endpoint)
		return res, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	if lastResult != nil {
		return lastResult, nil
	}
	return nil, fmt.Errorf("no agent api candidate for %s", c.cfg.BaseURL)
}

// agentCandidates 候选顺序：已缓存地址、显式配置、两个常规路径
func (c *Client) agentCandidates() []string {
	c.mu.Lock()
	cached := c.agentURL
	c.mu.Unlock()

	candidates := make([]string, 0, 4)
	seen := make(map[string]bool)
	add := func(u string) {
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		candidates = append(candidates, u)
	}

	add(cached)
	add(c.cfg.AgentAPIURL)
	if origin := originOf(c.cfg.BaseURL); origin != "" {
		for _, p := range agentAPIPaths {
			add(origin + p)
		}
	}

	return candidates
}

func (c *Client) rememberAgentURL(u string) {
	c.mu.Lock()
	c.agentURL = u
	c.mu.Unlock()
}

func (c *Client) forgetAgentURL(u string) {
	c.mu.Lock()
	if c.agentURL == u {
		c.agentURL = ""
	}
	c.mu.Unlock()
}

// AgentURL 当前缓存的 agent API 地址
func (c *Client) AgentURL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentURL
}

// Config 返回客户端配置副本
func (c *Client) Config() Config {
	return c.cfg
}

// post 发送 form 编码请求并读取完整返回
func (c *Client) post(ctx context.Context, endpoint, function string, params Params) (*Result, error) {
	op := "dialer." + function

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	body := encodeForm([][2]string{
		{"source", c.cfg.Source},
		{"user", c.cfg.User},
		{"pass", c.cfg.Pass},
		{"function", function},
	}, params)

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, errorx.Transport(op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errorx.Transport(op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errorx.Transport(op, err)
	}

	text := string(raw)
	return &Result{
		HTTPStatus:   resp.StatusCode,
		RawBody:      text,
		ParsedFields: parseFields(text),
		URL:          endpoint,
	}, nil
}

// originOf 取 scheme://host
func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
