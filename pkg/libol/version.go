package libol

// Set by -ldflags "-X github.com/luscis/vtn/pkg/libol.Version=...".
var (
	Version = "v1.0.0"
	Date    = "dev"
	Commit  = ""
)
