package api

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/ghodss/yaml"
	"github.com/luscis/vtn/pkg/libol"
)

var Output io.Writer = os.Stdout

func OutJson(data interface{}) error {
	if out, err := libol.Marshal(data, true); err == nil {
		_, _ = fmt.Fprintln(Output, string(out))
	} else {
		return err
	}
	return nil
}

func OutYaml(data interface{}) error {
	if out, err := yaml.Marshal(data); err == nil {
		_, _ = fmt.Fprintln(Output, string(out))
	} else {
		return err
	}
	return nil
}

func OutTable(data interface{}, tmpl string) error {
	funcMap := template.FuncMap{
		"ps": func(space int, args ...interface{}) string {
			format := "%" + strconv.Itoa(space) + "s"
			if space < 0 {
				format = "%-" + strconv.Itoa(-space) + "s"
			}
			return fmt.Sprintf(format, args...)
		},
		"pi": func(space int, args ...interface{}) string {
			format := "%" + strconv.Itoa(space) + "d"
			if space < 0 {
				format = "%-" + strconv.Itoa(-space) + "d"
			}
			return fmt.Sprintf(format, args...)
		},
		"short": func(size int, value string) string {
			if len(value) > size {
				return value[:size]
			}
			return value
		},
		"join": strings.Join,
	}
	if tmpl, err := template.New("main").Funcs(funcMap).Parse(tmpl); err != nil {
		return err
	} else {
		if err := tmpl.Execute(Output, data); err != nil {
			return err
		}
	}
	return nil
}

func Out(data interface{}, format string, tmpl string) error {
	libol.Debug("Out %s %s", format, tmpl)
	switch format {
	case "json":
		return OutJson(data)
	case "yaml":
		return OutYaml(data)
	default:
		return OutTable(data, tmpl)
	}
}
