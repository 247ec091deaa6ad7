package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// 默认的翻译接口地址，测试时可替换为本地服务
const defaultBaseURL = "https://translate.googleapis.com/translate_a/single"

// Client 调用外部翻译接口的客户端
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient 创建翻译客户端
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    defaultBaseURL,
	}
}

// NewClientWithBaseURL 创建指向指定地址的翻译客户端（测试用）
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

// Translate 把text从sourceLang翻译到targetLang。
// 任何失败都返回错误，由调用方决定是否回退为原文
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if sourceLang == "" {
		sourceLang = "en"
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("构建翻译请求失败: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求翻译接口失败: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("翻译接口返回状态码 %d", resp.StatusCode)
	}

	// 响应格式为嵌套数组: [[["译文","原文",...],...],...]
	var payload []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("解析翻译响应失败: %v", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("翻译响应为空")
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(payload[0], &segments); err != nil {
		return "", fmt.Errorf("解析翻译片段失败: %v", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var piece string
		if err := json.Unmarshal(seg[0], &piece); err != nil {
			continue
		}
		sb.WriteString(piece)
	}

	translated := sb.String()
	if translated == "" {
		return "", fmt.Errorf("翻译结果为空")
	}

	return translated, nil
}
