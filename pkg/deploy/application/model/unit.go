package model

import "time"

type ServiceUnitSpec struct {
	Description      string
	User             string
	WorkingDirectory string
	ExecPath         string
	Port             int
	LogLevel         string
	RestartInterval  time.Duration
	ReadWritePaths   []string
}

type ProxyConfigSpec struct {
	ServerName    string
	FrontendRoot  string
	BackendPort   int
	ProxyPrefixes []string
	Timeout       time.Duration
	// AssetExtensions get long-lived immutable caching.
	AssetExtensions []string
}

var DefaultAssetExtensions = []string{
	"js", "css", "png", "jpg", "jpeg", "gif", "ico", "svg", "woff", "woff2", "ttf", "eot",
}

func NewServiceUnitSpec(c DeploymentContext, backend DeployedBackend) ServiceUnitSpec {
	layout := c.Layout()
	return ServiceUnitSpec{
		Description:      c.AppName + " backend service",
		User:             c.User(),
		WorkingDirectory: layout.BackendRoot,
		ExecPath:         backend.ExecPath,
		Port:             c.BackendPort,
		LogLevel:         c.BackendLogLevel,
		RestartInterval:  time.Second,
		ReadWritePaths:   []string{layout.BackendRoot},
	}
}

func NewProxyConfigSpec(c DeploymentContext) ProxyConfigSpec {
	return ProxyConfigSpec{
		ServerName:      "_",
		FrontendRoot:    c.Layout().FrontendRoot,
		BackendPort:     c.BackendPort,
		ProxyPrefixes:   c.ProxyPrefixes,
		Timeout:         60 * time.Second,
		AssetExtensions: DefaultAssetExtensions,
	}
}

type ServiceStatus struct {
	Active string
	Logs   []string
}

type HealthReport struct {
	URL        string
	StatusCode int
	Status     string
}
