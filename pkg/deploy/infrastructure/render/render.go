package render

import (
	"bytes"
	"embed"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").
		Funcs(template.FuncMap{
			"join": strings.Join,
			"seconds": func(d time.Duration) int64 {
				return int64(d / time.Second)
			},
		}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

func ServiceUnit(spec model.ServiceUnitSpec) ([]byte, error) {
	return execute("backend.service.tmpl", spec)
}

func ProxyConfig(spec model.ProxyConfigSpec) ([]byte, error) {
	return execute("site.conf.tmpl", spec)
}

func execute(name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, name, data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute %v template", name)
	}
	return buf.Bytes(), nil
}
