package irm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"OutreachSync/internal/config"
	"OutreachSync/internal/model"
	"OutreachSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
)

// Client 机构/股东组映射服务客户端
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient 创建映射服务客户端
func NewClient(cfg *config.ServiceConfig, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken:  cfg.AuthToken,
		httpClient: httpclient.NewHTTPClient(config.ServiceIRM, cfg, logger),
		logger:     logger,
	}
}

type groupMappingResponse struct {
	Data []struct {
		ShareholderGroupID model.ExternalID `json:"shareholderGroupId"`
	} `json:"data"`
}

type institutionMappingResponse struct {
	Data []struct {
		InstitutionID model.ExternalID `json:"dealogicInstitutionId"`
	} `json:"data"`
}

// GroupForInstitution GET {base}/dealogicMapping/company/{companyId}/institution/{institutionId}
func (c *Client) GroupForInstitution(ctx context.Context, companyID, institutionID string) (string, bool, error) {
	var out groupMappingResponse
	if err := c.get(ctx, "/dealogicMapping/company/"+url.PathEscape(companyID)+"/institution/"+url.PathEscape(institutionID), &out); err != nil {
		return "", false, err
	}
	if len(out.Data) == 0 || out.Data[0].ShareholderGroupID == "" {
		return "", false, nil
	}
	return string(out.Data[0].ShareholderGroupID), true, nil
}

// InstitutionForGroup GET {base}/dealogicMapping/company/{companyId}/shareholderGroup/{groupId}
func (c *Client) InstitutionForGroup(ctx context.Context, companyID, groupID string) (string, bool, error) {
	var out institutionMappingResponse
	if err := c.get(ctx, "/dealogicMapping/company/"+url.PathEscape(companyID)+"/shareholderGroup/"+url.PathEscape(groupID), &out); err != nil {
		return "", false, err
	}
	if len(out.Data) == 0 || out.Data[0].InstitutionID == "" {
		return "", false, nil
	}
	return string(out.Data[0].InstitutionID), true, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("映射服务请求失败")
		return fmt.Errorf("mapping request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read mapping response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WithFields(logrus.Fields{"status": resp.StatusCode, "path": path}).Warn("映射服务返回错误")
		return fmt.Errorf("mapping service returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.logger.WithError(err).WithField("body", string(body)).Warn("映射服务响应解析失败")
		return fmt.Errorf("decode mapping response: %w", err)
	}
	return nil
}
