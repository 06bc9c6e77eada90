package libol

import (
	"crypto/tls"
	"io"
	"net/http"
	"time"
)

type HttpClient struct {
	Method    string
	Url       string
	Payload   io.Reader
	Timeout   time.Duration
	TlsConfig *tls.Config
	Client    *http.Client
}

func (cl *HttpClient) Do() (*http.Response, error) {
	if cl.Method == "" {
		cl.Method = "GET"
	}
	if cl.TlsConfig == nil {
		cl.TlsConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cl.Timeout == 0 {
		cl.Timeout = 30 * time.Second
	}
	req, err := http.NewRequest(cl.Method, cl.Url, cl.Payload)
	if err != nil {
		return nil, err
	}
	if cl.Payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	cl.Client = &http.Client{
		Timeout: cl.Timeout,
		Transport: &http.Transport{
			TLSClientConfig: cl.TlsConfig,
		},
	}
	return cl.Client.Do(req)
}

func (cl *HttpClient) Close() {
	if cl.Client != nil {
		cl.Client.CloseIdleConnections()
	}
}
