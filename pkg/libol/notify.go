package libol

import (
	"github.com/coreos/go-systemd/v22/daemon"
)

func sdNotify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		Warn("SdNotify %s: %s", state, err)
		return
	}
	if !sent {
		Debug("SdNotify %s: not supported", state)
	}
}

// PreNotify tells systemd the service is still loading.
func PreNotify() {
	sdNotify("STATUS=loading")
}

// SdNotify tells systemd the service is ready.
func SdNotify() {
	sdNotify(daemon.SdNotifyReady)
}

// SdStopping tells systemd the service begins shutdown.
func SdStopping() {
	sdNotify(daemon.SdNotifyStopping)
}
