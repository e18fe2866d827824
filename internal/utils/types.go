package utils

import "net/http"

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
	SetHeader(key, value string)
}

type DownloadEntry struct {
	OutputPath string `yaml:"op"`
	URL        string `yaml:"link"`
	Sink       string `yaml:"sink,omitempty"` // "file" (default) or "s3"
}
