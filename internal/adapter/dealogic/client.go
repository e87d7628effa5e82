package dealogic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"OutreachSync/internal/adapter"
	"OutreachSync/internal/config"
	"OutreachSync/internal/interfaces"
	"OutreachSync/internal/model"
	"OutreachSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

func init() {
	adapter.Register(config.ServiceDealogic, func(cfg *config.ServiceConfig, logger *logrus.Logger) interfaces.DirectoryClient {
		return NewClient(cfg, logger)
	})
}

// Client 投资人目录服务客户端
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient 创建目录服务客户端
func NewClient(cfg *config.ServiceConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken:  cfg.AuthToken,
		httpClient: httpclient.NewHTTPClient(config.ServiceDealogic, cfg, logger),
		logger:     logger,
	}
}

// GetContactProfile GET {base}/contacts/{id}；404 或 null 响应视为不存在
func (c *Client) GetContactProfile(ctx context.Context, externalContactID string) (*model.ExternalContactProfile, error) {
	endpoint := c.baseURL + "/contacts/" + url.PathEscape(externalContactID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("external_contact_id", externalContactID).Warn("目录服务请求失败")
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read directory response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logrus.Fields{
			"status":              resp.StatusCode,
			"external_contact_id": externalContactID,
		}).Warn("目录服务返回错误")
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	trimmed := bytes.TrimSpace(respBody)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var profile model.ExternalContactProfile
	if err := json.Unmarshal(trimmed, &profile); err != nil {
		c.logger.WithError(err).WithField("body", string(respBody)).Warn("目录服务响应解析失败")
		return nil, fmt.Errorf("decode directory profile: %w", err)
	}
	return &profile, nil
}
