package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/luscis/vtn/pkg/libol"
)

type Log struct {
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Verbose int    `json:"level,omitempty" yaml:"level,omitempty"`
}

func (l *Log) Correct() {
	if l.Verbose == 0 {
		l.Verbose = libol.INFO
	}
}

type Http struct {
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"`
}

func (h *Http) Correct() {
	SetListen(&h.Listen, 10080)
}

func (h *Http) GetUrl() string {
	port := "10080"
	values := strings.SplitN(h.Listen, ":", 2)
	if len(values) == 2 {
		port = values[1]
	}
	return "http://127.0.0.1:" + port
}

func SetListen(listen *string, port int) {
	if *listen == "" {
		*listen = fmt.Sprintf("0.0.0.0:%d", port)
		return
	}
	values := strings.SplitN(*listen, ":", 2)
	if len(values) == 1 {
		*listen = fmt.Sprintf("%s:%d", values[0], port)
	}
}

func GetAlias() string {
	if hostname, err := os.Hostname(); err == nil {
		return strings.ToLower(hostname)
	}
	return "vtn"
}
