package v1

import (
	"fmt"
	"os"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/luscis/vtn/cmd/api"
	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
	"github.com/urfave/cli/v2"
)

// NodeUrl returns the url of the node p under prefix.
func NodeUrl(prefix string, p vnode.Path) (string, error) {
	base := prefix + "/api/vtn/" + p.TenantName()
	switch v := p.(type) {
	case vnode.TenantPath:
		return base, nil
	case vnode.BridgePath:
		return base + "/vbridge/" + v.Bridge, nil
	case vnode.InterfacePath:
		return fmt.Sprintf("%s/%s/%s/interface/%s", base, v.Kind, v.Node, v.Interface), nil
	default:
		return "", libol.NewErr("%s has no flow filter", p)
	}
}

// LoadList reads a list from a JSON or YAML file.
func LoadList(file string) (*schema.FlowFilterList, error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	data := &schema.FlowFilterList{}
	if err := yaml.Unmarshal(contents, data); err != nil {
		return nil, libol.NewErr("%s: %s", file, err)
	}
	return data, nil
}

type filterRow struct {
	Index     int
	Condition string
	Type      string
	Target    string
	Actions   string
}

func newRows(data *schema.FlowFilterList) ([]filterRow, error) {
	l, err := flowfilter.NewList(data, false)
	if err != nil {
		return nil, err
	}
	rows := make([]filterRow, 0, l.Len())
	for _, rule := range l.Rules() {
		row := filterRow{
			Index:     int(rule.Index()),
			Condition: rule.Condition(),
			Type:      rule.Disposition().String(),
		}
		if r, ok := rule.Redirect(); ok {
			row.Target = r.String()
		}
		actions := make([]string, 0, 4)
		for _, a := range rule.Actions() {
			actions = append(actions, a.String())
		}
		row.Actions = strings.Join(actions, " ")
		rows = append(rows, row)
	}
	return rows, nil
}

type FlowFilter struct {
	Cmd
}

func (u FlowFilter) Url(prefix, name string) string {
	if name == "" {
		return prefix + "/api/flowfilter"
	}
	return prefix + "/api/flowfilter/" + name
}

func (u FlowFilter) NodeUrl(c *cli.Context) (string, error) {
	owner, err := vnode.Parse(c.String("node"))
	if err != nil {
		return "", err
	}
	dir, err := flowfilter.ParseDirection(c.String("direction"))
	if err != nil {
		return "", err
	}
	url, err := NodeUrl(c.String("url"), owner)
	if err != nil {
		return "", err
	}
	return url + "/flowfilter/" + dir.Wire(), nil
}

func (u FlowFilter) Tmpl() string {
	return `# total {{ len . }}
{{ps -40 "id"}} {{ps -5 "rules"}} {{ps -12 "digest"}}
{{- range . }}
{{ps -40 .Id}} {{pi -5 .Len}} {{short 12 .Digest}}
{{- end }}
`
}

func (u FlowFilter) RuleTmpl() string {
	return `# total {{ len . }}
{{ps -5 "index"}} {{ps -16 "condition"}} {{ps -8 "type"}} {{ps -24 "target"}} {{ps -8 "actions"}}
{{- range . }}
{{pi -5 .Index}} {{ps -16 .Condition}} {{ps -8 .Type}} {{ps -24 .Target}} {{ .Actions }}
{{- end }}
`
}

func (u FlowFilter) outList(data *schema.FlowFilterList, format string) error {
	if format != "table" {
		return u.Out(data, format, "")
	}
	rows, err := newRows(data)
	if err != nil {
		return err
	}
	return u.Out(rows, format, u.RuleTmpl())
}

func (u FlowFilter) List(c *cli.Context) error {
	url := u.Url(c.String("url"), "")
	if tenant := c.String("tenant"); tenant != "" {
		url += "?tenant=" + tenant
	}
	clt := u.NewHttp()
	var items []schema.FlowFilterState
	if err := clt.GetJSON(url, &items); err != nil {
		return err
	}
	return u.Out(items, c.String("format"), u.Tmpl())
}

func (u FlowFilter) Get(c *cli.Context) error {
	url, err := u.NodeUrl(c)
	if err != nil {
		return err
	}
	clt := u.NewHttp()
	var item schema.FlowFilterState
	if err := clt.GetJSON(url, &item); err != nil {
		return err
	}
	if file := c.String("save"); file != "" {
		if item.List == nil {
			item.List = &schema.FlowFilterList{}
		}
		// Saved files are accepted by set and validate.
		return libol.MarshalSave(item.List, file, true)
	}
	if c.String("format") != "table" {
		return u.Out(item, c.String("format"), "")
	}
	if item.List == nil {
		item.List = &schema.FlowFilterList{}
	}
	return u.outList(item.List, "table")
}

func (u FlowFilter) Set(c *cli.Context) error {
	url, err := u.NodeUrl(c)
	if err != nil {
		return err
	}
	data, err := LoadList(c.String("file"))
	if err != nil {
		return err
	}
	clt := u.NewHttp()
	var item schema.FlowFilterState
	if err := clt.PutJSON(url, data, &item); err != nil {
		return err
	}
	return u.Out([]schema.FlowFilterState{item}, c.String("format"), u.Tmpl())
}

func (u FlowFilter) Remove(c *cli.Context) error {
	url, err := u.NodeUrl(c)
	if err != nil {
		return err
	}
	clt := u.NewHttp()
	return clt.DeleteJSON(url, nil, nil)
}

func (u FlowFilter) Flows(c *cli.Context) error {
	url, err := u.NodeUrl(c)
	if err != nil {
		return err
	}
	clt := u.NewHttp()
	var item schema.FlowText
	if err := clt.GetJSON(url+"/flows", &item); err != nil {
		return err
	}
	return u.Out(item, c.String("format"), `# bridge {{ .Bridge }}
{{- range .Flows }}
{{ . }}
{{- end }}
`)
}

// Validate checks a file locally, and against the node when one is given.
func (u FlowFilter) Validate(c *cli.Context) error {
	data, err := LoadList(c.String("file"))
	if err != nil {
		return err
	}
	l, err := flowfilter.NewList(data, false)
	if err != nil {
		kind, _ := flowfilter.KindOf(err)
		return libol.NewErr("%s: %s", kind, err)
	}
	var owner vnode.Path
	if node := c.String("node"); node != "" {
		if owner, err = vnode.Parse(node); err != nil {
			return err
		}
	}
	ret, err := l.Wire(owner)
	if err != nil {
		kind, _ := flowfilter.KindOf(err)
		return libol.NewErr("%s: %s", kind, err)
	}
	if ret == nil {
		ret = &schema.FlowFilterList{}
	}
	return u.outList(ret, c.String("format"))
}

func nodeFlag() cli.Flag {
	return &cli.StringFlag{Name: "node", Aliases: []string{"n"}, Usage: "tenant[/bridge|/~terminal[/interface]]", Required: true}
}

func directionFlag() cli.Flag {
	return &cli.StringFlag{Name: "direction", Aliases: []string{"d"}, Usage: "in or out", Value: "in"}
}

func fileFlag() cli.Flag {
	return &cli.StringFlag{Name: "file", Aliases: []string{"i"}, Usage: "JSON or YAML file", Required: true}
}

func (u FlowFilter) Commands(app *api.App) {
	app.Command(&cli.Command{
		Name:    "flowfilter",
		Aliases: []string{"ff"},
		Usage:   "Flow filter of virtual nodes",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Usage:   "Display all flow filters",
				Aliases: []string{"ls"},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "tenant", Aliases: []string{"t"}, Usage: "only the lists of this tenant"},
				},
				Action: u.List,
			},
			{
				Name:  "get",
				Usage: "Display the flow filter of a node",
				Flags: []cli.Flag{
					nodeFlag(),
					directionFlag(),
					&cli.StringFlag{Name: "save", Aliases: []string{"o"}, Usage: "save the list to a JSON or YAML file"},
				},
				Action: u.Get,
			},
			{
				Name:   "set",
				Usage:  "Replace the flow filter of a node",
				Flags:  []cli.Flag{nodeFlag(), directionFlag(), fileFlag()},
				Action: u.Set,
			},
			{
				Name:    "remove",
				Usage:   "Remove the flow filter of a node",
				Aliases: []string{"rm"},
				Flags:   []cli.Flag{nodeFlag(), directionFlag()},
				Action:  u.Remove,
			},
			{
				Name:   "flows",
				Usage:  "Display the OpenFlow flows of a node",
				Flags:  []cli.Flag{nodeFlag(), directionFlag()},
				Action: u.Flows,
			},
			{
				Name:  "validate",
				Usage: "Check a flow filter file offline",
				Flags: []cli.Flag{
					fileFlag(),
					&cli.StringFlag{Name: "node", Aliases: []string{"n"}, Usage: "check against this node"},
				},
				Action: u.Validate,
			},
		},
	})
}
