package v1

import (
	"time"

	"github.com/luscis/vtn/cmd/api"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/urfave/cli/v2"
)

func Before(c *cli.Context) error {
	return nil
}

func After(c *cli.Context) error {
	return nil
}

func Commands(app *api.App) {
	app.After = After
	app.Before = Before
	Version{}.Commands(app)
	Log{}.Commands(app)
	Index{}.Commands(app)
	FlowFilter{}.Commands(app)
}

type Cmd struct {
}

func (c Cmd) NewHttp() Client {
	return Client{Timeout: 30 * time.Second}
}

func (c Cmd) Url(prefix, name string) string {
	return ""
}

func (c Cmd) Tmpl() string {
	return ""
}

func (c Cmd) Out(data interface{}, format string, tmpl string) error {
	if tmpl == "" && format == "table" {
		format = "yaml"
	}
	return api.Out(data, format, tmpl)
}

func (c Cmd) Log() *libol.SubLogger {
	return libol.NewSubLogger("cli")
}
