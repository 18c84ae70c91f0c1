// Package astrocats 从 OSC API (api.astrocats.space) 抓取原始事件文件
package astrocats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"SNCatalog/internal/config"
	"SNCatalog/internal/interfaces"
	"SNCatalog/internal/model"
	"SNCatalog/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// maxBodyBytes 单个事件文件的上限
const maxBodyBytes = 32 << 20

type Adapter struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewAdapter 创建 OSC API 适配器
func NewAdapter(cfg config.FetchConfig, logger *logrus.Logger) interfaces.RawEventSource {
	return &Adapter{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpclient.NewHTTPClient(cfg, logger),
		logger:     logger,
	}
}

func (a *Adapter) GetName() string {
	return "astrocats"
}

// FetchEvent GET {base}/{name}，校验响应是以该事件名为键的原始 OSC 文件后原样返回
func (a *Adapter) FetchEvent(ctx context.Context, name string) ([]byte, error) {
	eventURL := fmt.Sprintf("%s/%s", a.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取事件 %s 失败: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("获取事件 %s 失败: HTTP %d", name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("读取事件 %s 失败: %w", name, err)
	}

	var file model.RawOSCFile
	if err := json.Unmarshal(body, &file); err != nil {
		return nil, fmt.Errorf("解析事件 %s 失败: %w", name, err)
	}
	if _, ok := file[name]; !ok {
		return nil, fmt.Errorf("事件 %s 不在响应中", name)
	}
	a.logger.WithField("event", name).Debug("原始事件抓取成功")
	return body, nil
}
