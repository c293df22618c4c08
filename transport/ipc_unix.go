//go:build unix

package transport

import (
	"context"
	"net"
	"os"
	"path/filepath"
)

func openConn(ctx context.Context, name string) (net.Conn, error) {
	var dialer net.Dialer

	return dialer.DialContext(ctx, "unix", filepath.Join(getIPCPath(), name))
}

const (
	defaultPath = "/tmp"
)

var (
	tmpVariables = []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"}
	sandboxPaths = []string{
		"snap.discord",
		".flatpak/com.discordapp.Discord/xdg-run",
	}
)

func getIPCPath() string {
	base := defaultPath

	for _, variable := range tmpVariables {
		if path, exists := os.LookupEnv(variable); exists && path != "" {
			base = path
			break
		}
	}

	for _, sandbox := range sandboxPaths {
		path := filepath.Join(base, sandbox)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return base
}
