package v1

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/luscis/vtn/pkg/libol"
)

type Client struct {
	Timeout time.Duration
}

func (cl Client) NewRequest(url string) *libol.HttpClient {
	client := &libol.HttpClient{
		Url:     url,
		Timeout: cl.Timeout,
	}
	return client
}

func (cl Client) JSON(client *libol.HttpClient, i, o interface{}) error {
	out := cl.Log()
	if i != nil {
		data, err := json.Marshal(i)
		if err != nil {
			return err
		}
		out.Debug("Client.JSON -> %s", string(data))
		client.Payload = bytes.NewReader(data)
	}
	out.Debug("Client.JSON -> %s %s", client.Method, client.Url)
	defer client.Close()
	r, err := client.Do()
	if err != nil {
		return err
	}
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	out.Debug("Client.JSON <- %s", string(body))
	if r.StatusCode != http.StatusOK {
		return libol.NewErr("%s %s", r.Status, bytes.TrimSpace(body))
	} else if o != nil {
		if err := json.Unmarshal(body, o); err != nil {
			return err
		}
	}
	return nil
}

func (cl Client) GetJSON(url string, v interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "GET"
	return cl.JSON(client, nil, v)
}

func (cl Client) PostJSON(url string, i, o interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "POST"
	return cl.JSON(client, i, o)
}

func (cl Client) PutJSON(url string, i, o interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "PUT"
	return cl.JSON(client, i, o)
}

func (cl Client) DeleteJSON(url string, i, o interface{}) error {
	client := cl.NewRequest(url)
	client.Method = "DELETE"
	return cl.JSON(client, i, o)
}

func (cl Client) Log() *libol.SubLogger {
	return libol.NewSubLogger("cli")
}
