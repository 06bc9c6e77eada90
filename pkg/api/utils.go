package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/luscis/vtn/pkg/flowfilter"
	"github.com/luscis/vtn/pkg/libol"
	"github.com/luscis/vtn/pkg/schema"
	"gopkg.in/yaml.v2"
)

func ResponseJson(w http.ResponseWriter, v interface{}) {
	ResponseCode(w, http.StatusOK, v)
}

func ResponseCode(w http.ResponseWriter, code int, v interface{}) {
	str, err := json.Marshal(v)
	if err == nil {
		libol.Debug("ResponseJson: %s", str)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_, _ = w.Write(str)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func ResponseMsg(w http.ResponseWriter, code int, message string) {
	ret := &schema.Message{
		Code:    code,
		Message: message,
	}
	ResponseJson(w, ret)
}

// ResponseError answers a rejected configuration with 400 and its kind,
// anything else with code.
func ResponseError(w http.ResponseWriter, code int, err error) {
	ret := &schema.Message{
		Code:    code,
		Message: err.Error(),
	}
	if kind, ok := flowfilter.KindOf(err); ok {
		ret.Code = http.StatusBadRequest
		ret.Kind = kind.String()
	}
	ResponseCode(w, ret.Code, ret)
}

func ResponseYaml(w http.ResponseWriter, v interface{}) {
	str, err := yaml.Marshal(v)
	if err == nil {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(str)
	} else {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func GetData(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return err
	}
	return nil
}

func GetQueryOne(req *http.Request, name string) string {
	query := req.URL.Query()
	if values, ok := query[name]; ok {
		return values[0]
	}
	return ""
}
