package schema

type Index struct {
	Version Version           `json:"version"`
	Alias   string            `json:"alias"`
	Uptime  int64             `json:"uptime"`
	Filters []FlowFilterState `json:"filters"`
}

type Message struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}
