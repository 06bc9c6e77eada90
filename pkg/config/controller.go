package config

import (
	"flag"
	"path/filepath"
	"sort"

	"github.com/luscis/vtn/pkg/libol"
)

// MaxScope is the largest id of a tenant, bridge or terminal in scopes.
const MaxScope = 0xffff

type Controller struct {
	File       string                    `json:"-" yaml:"-"`
	Alias      string                    `json:"alias,omitempty" yaml:"alias,omitempty"`
	Http       *Http                     `json:"http,omitempty" yaml:"http,omitempty"`
	Log        Log                       `json:"log" yaml:"log"`
	Bridge     string                    `json:"bridge,omitempty" yaml:"bridge,omitempty"`
	Table      int                       `json:"table,omitempty" yaml:"table,omitempty"`
	Apply      bool                      `json:"apply,omitempty" yaml:"apply,omitempty"`
	Conditions map[string]*FlowCondition `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Ports      map[string]int            `json:"ports,omitempty" yaml:"ports,omitempty"`
	Scopes     map[string]int            `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	ConfDir    string                    `json:"-" yaml:"-"`
}

func NewController() *Controller {
	c := &Controller{}
	c.Parse()
	c.Initialize()
	return c
}

func (c *Controller) Parse() {
	flag.StringVar(&c.Log.File, "log:file", "", "Configure log file")
	flag.StringVar(&c.ConfDir, "conf:dir", "/etc/vtn", "Configure controller's directory")
	flag.IntVar(&c.Log.Verbose, "log:level", libol.INFO, "Configure log level")
	flag.Parse()
}

func (c *Controller) Initialize() {
	c.File = c.FindFile()
	if err := c.Load(); err != nil {
		libol.Error("Controller.Initialize %s", err)
	}
	c.Correct()
	libol.Debug("Controller.Initialize %v", c)
}

// FindFile prefers controller.json and falls back to controller.yaml.
func (c *Controller) FindFile() string {
	for _, name := range []string{"controller.json", "controller.yaml"} {
		file := c.Dir(name)
		if err := libol.FileExist(file); err == nil {
			return file
		}
	}
	return c.Dir("controller.json")
}

func (c *Controller) Load() error {
	return libol.UnmarshalLoad(c, c.File)
}

func (c *Controller) Correct() {
	c.Log.Correct()
	if c.Alias == "" {
		c.Alias = GetAlias()
	}
	if c.Http == nil {
		c.Http = &Http{}
	}
	c.Http.Correct()
	if c.Bridge == "" {
		c.Bridge = "br-vtn"
	}
	if c.Conditions == nil {
		c.Conditions = make(map[string]*FlowCondition, 32)
	}
	for name, cond := range c.Conditions {
		if cond == nil {
			delete(c.Conditions, name)
			continue
		}
		cond.Name = name
		cond.Correct()
	}
	if c.Ports == nil {
		c.Ports = make(map[string]int, 32)
	}
	if c.Scopes == nil {
		c.Scopes = make(map[string]int, 32)
	}
	for node, id := range c.Scopes {
		if id < 1 || id > MaxScope {
			libol.Warn("Controller.Correct scope of %s out of range: %d", node, id)
			delete(c.Scopes, node)
		}
	}
}

func (c *Controller) Dir(elem ...string) string {
	args := append([]string{c.ConfDir}, elem...)
	return filepath.Join(args...)
}

func (c *Controller) GetCondition(name string) *FlowCondition {
	return c.Conditions[name]
}

// ConditionNames returns the names of all conditions, sorted.
func (c *Controller) ConditionNames() []string {
	names := make([]string, 0, len(c.Conditions))
	for name := range c.Conditions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
