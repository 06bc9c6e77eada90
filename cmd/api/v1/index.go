package v1

import (
	"github.com/luscis/vtn/cmd/api"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/urfave/cli/v2"
)

type Index struct {
	Cmd
}

func (v Index) Url(prefix, name string) string {
	return prefix + "/api/index"
}

func (v Index) Tmpl() string {
	return `Version:  {{ .Version.Version }}
Alias  :  {{ .Alias }}
Uptime :  {{ .Uptime }}s
# total {{ len .Filters }}
{{ps -40 "id"}} {{ps -5 "rules"}} {{ps -12 "digest"}}
{{- range .Filters }}
{{ps -40 .Id}} {{pi -5 .Len}} {{short 12 .Digest}}
{{- end }}
`
}

func (v Index) List(c *cli.Context) error {
	url := v.Url(c.String("url"), "")
	clt := v.NewHttp()
	var item schema.Index
	if err := clt.GetJSON(url, &item); err != nil {
		return err
	}
	return v.Out(item, c.String("format"), v.Tmpl())
}

func (v Index) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:   "index",
		Usage:  "show controller summary",
		Action: v.List,
	})
}
