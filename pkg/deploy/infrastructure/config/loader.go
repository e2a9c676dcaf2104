package config

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

const (
	defaultAppName        = "streetsource"
	defaultTarget         = "x86_64-unknown-linux-gnu"
	defaultFrontendDir    = "frontend"
	defaultBackendDir     = "backend"
	defaultFrontendOutput = "dist"
	defaultLogLevel       = "info"
)

var defaultProxyPrefixes = []string{"api", "health", "ws"}

// File is the optional on-disk configuration.
type File struct {
	AppName           string   `yaml:"app_name"`
	ProjectRoot       string   `yaml:"project_root"`
	FrontendDir       string   `yaml:"frontend_dir"`
	BackendDir        string   `yaml:"backend_dir"`
	FrontendOutput    string   `yaml:"frontend_output"`
	RemoteRoot        string   `yaml:"remote_root"`
	Target            string   `yaml:"target"`
	BackendLogLevel   string   `yaml:"backend_log_level"`
	StrictBinaryMatch bool     `yaml:"strict_binary_match"`
	ProxyPrefixes     []string `yaml:"proxy_prefixes"`
}

// Flags are the values given on the command line.
type Flags struct {
	IdentityFile string
	Host         string
	BackendPort  int
}

// Load reads path. A missing file yields an empty configuration.
func Load(path string) (File, error) {
	var file File
	if path == "" {
		return file, nil
	}
	body, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return file, nil
	}
	if err != nil {
		return file, errors.Wrapf(err, "failed to read config file: %v", path)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(body))
	decoder.KnownFields(true)
	err = decoder.Decode(&file)
	if err != nil && !errors.Is(err, io.EOF) {
		return File{}, errors.Wrapf(err, "failed to unmarshal config %v", path)
	}
	return file, nil
}

// NewDeploymentContext merges flags over file settings and defaults, then
// validates the result.
func NewDeploymentContext(flags Flags, file File, workDir string) (model.DeploymentContext, error) {
	projectRoot := orDefault(file.ProjectRoot, workDir)
	if !filepath.IsAbs(projectRoot) {
		projectRoot = filepath.Join(workDir, projectRoot)
	}
	appName := orDefault(file.AppName, defaultAppName)
	proxyPrefixes := file.ProxyPrefixes
	if len(proxyPrefixes) == 0 {
		proxyPrefixes = defaultProxyPrefixes
	}
	backendPort := flags.BackendPort
	if backendPort == 0 {
		backendPort = model.DefaultBackendPort
	}

	deployment := model.DeploymentContext{
		IdentityFile:      flags.IdentityFile,
		Host:              flags.Host,
		BackendPort:       backendPort,
		AppName:           appName,
		ProjectRoot:       projectRoot,
		FrontendDir:       orDefault(file.FrontendDir, defaultFrontendDir),
		BackendDir:        orDefault(file.BackendDir, defaultBackendDir),
		FrontendOutput:    orDefault(file.FrontendOutput, defaultFrontendOutput),
		RemoteRoot:        orDefault(file.RemoteRoot, "/opt/"+appName),
		Target:            orDefault(file.Target, defaultTarget),
		BackendLogLevel:   orDefault(file.BackendLogLevel, defaultLogLevel),
		StrictBinaryMatch: file.StrictBinaryMatch,
		ProxyPrefixes:     proxyPrefixes,
	}
	err := newValidator().Struct(deployment)
	if err != nil {
		return model.DeploymentContext{}, errors.Wrap(err, "invalid deployment configuration")
	}
	return deployment, nil
}

func newValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	// user@address, both parts non-empty and free of whitespace
	_ = validate.RegisterValidation("userhost", func(fl validator.FieldLevel) bool {
		user, address, found := strings.Cut(fl.Field().String(), "@")
		return found && user != "" && address != "" && !strings.ContainsAny(fl.Field().String(), " \t")
	})
	return validate
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
