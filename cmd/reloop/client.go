package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// daemonClient is a thin HTTP client for the daemon API.
type daemonClient struct {
	baseURL string
	http    *http.Client
}

func newDaemonClient(addr string) *daemonClient {
	addr = strings.TrimSpace(addr)
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}
	return &daemonClient{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *daemonClient) get(path string, target any) error {
	return c.do(http.MethodGet, path, nil, "", target)
}

func (c *daemonClient) postJSON(path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(http.MethodPost, path, bytes.NewReader(body), "application/json", target)
}

func (c *daemonClient) patchJSON(path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(http.MethodPatch, path, bytes.NewReader(body), "application/json", target)
}

func (c *daemonClient) delete(path string) error {
	return c.do(http.MethodDelete, path, nil, "", nil)
}

// uploadFile streams a local video file to the daemon as a multipart upload.
func (c *daemonClient) uploadFile(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("build upload: %w", err)
	}

	return c.do(http.MethodPost, "/api/nodes", &body, writer.FormDataContentType(), target)
}

func (c *daemonClient) do(method, path string, body io.Reader, contentType string, target any) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var parsed struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &parsed); err == nil && parsed.Error != "" {
		return fmt.Errorf("daemon: %s", parsed.Error)
	}
	return fmt.Errorf("daemon returned %s", resp.Status)
}
