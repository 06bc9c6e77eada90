package v1

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/luscis/vtn/cmd/api"
	co "github.com/luscis/vtn/pkg/config"
	"github.com/luscis/vtn/pkg/controller"
	"github.com/luscis/vtn/pkg/schema"
	"github.com/luscis/vtn/pkg/vnode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlList = `
filters:
  - index: 20
    condition: web
    type: redirect
    redirect:
      destination:
        bridge: vbr_1
        interface: if_2
  - index: 10
    condition: web
    type: pass
    actions:
      - order: 1
        type: set-inet-dscp
        value: 46
`

func writeFile(t *testing.T, name, data string) string {
	file := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(file, []byte(data), 0600))
	return file
}

func runApp(t *testing.T, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	api.Output = buf
	defer func() { api.Output = os.Stdout }()
	app := &api.App{}
	app.New()
	Commands(app)
	err := app.Run(append([]string{"vtnctl"}, args...))
	return buf.String(), err
}

func TestNodeUrl(t *testing.T) {
	cases := map[string]string{
		"vtn_1":             "http://x/api/vtn/vtn_1",
		"vtn_1/vbr_1":       "http://x/api/vtn/vtn_1/vbridge/vbr_1",
		"vtn_1/vbr_1/if_1":  "http://x/api/vtn/vtn_1/vbridge/vbr_1/interface/if_1",
		"vtn_1/~vtm_1/if_1": "http://x/api/vtn/vtn_1/vterminal/vtm_1/interface/if_1",
	}
	for node, want := range cases {
		p, err := vnode.Parse(node)
		require.NoError(t, err)
		url, err := NodeUrl("http://x", p)
		require.NoError(t, err)
		assert.Equal(t, want, url, "be the same.")
	}
	_, err := NodeUrl("http://x", vnode.TerminalPath{Tenant: "vtn_1", Terminal: "vtm_1"})
	assert.Error(t, err)
}

func TestLoadList(t *testing.T) {
	data, err := LoadList(writeFile(t, "list.yaml", yamlList))
	require.NoError(t, err)
	require.Len(t, data.Filters, 2)
	assert.Equal(t, 20, *data.Filters[0].Index, "be the same.")
	assert.Equal(t, "if_2", data.Filters[0].Redirect.Destination.Interface, "be the same.")

	data, err = LoadList(writeFile(t, "list.json", `{"filters": [{"index": 1, "condition": "c", "type": "drop"}]}`))
	require.NoError(t, err)
	assert.Equal(t, schema.FilterDrop, data.Filters[0].Type, "be the same.")

	_, err = LoadList(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestFlowFilter_Validate(t *testing.T) {
	file := writeFile(t, "list.yaml", yamlList)
	out, err := runApp(t, "--format", "json", "flowfilter", "validate", "--file", file)
	require.NoError(t, err)
	ret := &schema.FlowFilterList{}
	require.NoError(t, json.Unmarshal([]byte(out), ret))
	require.Len(t, ret.Filters, 2)
	assert.Equal(t, 10, *ret.Filters[0].Index, "be the same.")

	out, err = runApp(t, "flowfilter", "validate", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "# total 2")
	assert.Contains(t, out, "1:set-inet-dscp=46")

	_, err = runApp(t, "flowfilter", "validate", "--file", file, "--node", "vtn_1/vbr_1/if_2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SelfRedirection")

	bad := writeFile(t, "bad.yaml", "filters:\n  - index: 1\n    type: pass\n")
	_, err = runApp(t, "flowfilter", "validate", "--file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MissingCondition")
}

func TestFlowFilter_Remote(t *testing.T) {
	c := &co.Controller{
		Conditions: map[string]*co.FlowCondition{"web": {DstPort: 80}},
		Ports:      map[string]int{"vtn_1/vbr_1/if_2": 2},
		Scopes:     map[string]int{"vtn_1": 1, "vtn_1/vbr_1": 1},
	}
	c.Correct()
	h := controller.NewHttp(controller.NewController(c), "127.0.0.1:0")
	h.Initialize()
	s := httptest.NewServer(h.Router())
	defer s.Close()

	file := writeFile(t, "list.yaml", yamlList)
	out, err := runApp(t, "--url", s.URL, "flowfilter", "set", "--node", "vtn_1/vbr_1", "--direction", "out", "--file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "vtn_1/vbr_1%OUT")

	out, err = runApp(t, "--url", s.URL, "flowfilter", "get", "--node", "vtn_1/vbr_1", "--direction", "out")
	require.NoError(t, err)
	assert.Contains(t, out, "vbridge vbr_1/if_2 (in)")

	saved := filepath.Join(t.TempDir(), "saved.yaml")
	_, err = runApp(t, "--url", s.URL, "flowfilter", "get", "--node", "vtn_1/vbr_1", "--direction", "out", "--save", saved)
	require.NoError(t, err)
	data, err := LoadList(saved)
	require.NoError(t, err)
	assert.Len(t, data.Filters, 2)

	out, err = runApp(t, "--url", s.URL, "flowfilter", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "# total 1")

	out, err = runApp(t, "--url", s.URL, "flowfilter", "list", "--tenant", "vtn_2")
	require.NoError(t, err)
	assert.Contains(t, out, "# total 0")

	out, err = runApp(t, "--url", s.URL, "--format", "json", "flowfilter", "flows", "--node", "vtn_1/vbr_1", "--direction", "out")
	require.NoError(t, err)
	text := &schema.FlowText{}
	require.NoError(t, json.Unmarshal([]byte(out), text))
	assert.Len(t, text.Flows, 2)

	_, err = runApp(t, "--url", s.URL, "flowfilter", "remove", "--node", "vtn_1/vbr_1", "--direction", "out")
	require.NoError(t, err)
	_, err = runApp(t, "--url", s.URL, "flowfilter", "get", "--node", "vtn_1/vbr_1", "--direction", "out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
