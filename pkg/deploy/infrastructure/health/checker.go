package health

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
)

const healthyStatus = "healthy"

type Options struct {
	Timeout  time.Duration
	Attempts int
	Interval time.Duration
}

func NewChecker(logger logrus.FieldLogger, options Options) *Checker {
	if options.Attempts < 1 {
		options.Attempts = 1
	}
	return &Checker{
		logger:  logger,
		client:  &http.Client{Timeout: options.Timeout},
		options: options,
	}
}

// Checker probes the deployed service's health endpoint through the proxy.
type Checker struct {
	logger  logrus.FieldLogger
	client  *http.Client
	options Options
}

func (c *Checker) Check(ctx context.Context, baseURL string) (model.HealthReport, error) {
	url := strings.TrimRight(baseURL, "/") + "/health"
	var (
		report model.HealthReport
		err    error
	)
	for attempt := 1; attempt <= c.options.Attempts; attempt++ {
		report, err = c.probe(ctx, url)
		if err == nil {
			c.logger.Info(fmt.Sprintf("%v is %v", url, report.Status))
			return report, nil
		}
		c.logger.Debug(fmt.Sprintf("attempt %d/%d: %v", attempt, c.options.Attempts, err))
		if attempt == c.options.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			return report, model.WrapError(ctx.Err(), "health check interrupted")
		case <-time.After(c.options.Interval):
		}
	}
	return report, model.WrapError(err,
		"health check failed",
		"Check the backend with: deploy status",
		"Make sure port 80 is open in the host firewall",
	)
}

func (c *Checker) probe(ctx context.Context, url string) (model.HealthReport, error) {
	report := model.HealthReport{URL: url}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return report, errors.Wrapf(err, "failed to build request for %v", url)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return report, errors.Wrapf(err, "GET %v", url)
	}
	defer resp.Body.Close()
	report.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return report, errors.Wrapf(err, "failed to read response of %v", url)
	}
	if resp.StatusCode != http.StatusOK {
		return report, fmt.Errorf("GET %v returned %d", url, resp.StatusCode)
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err = json.Unmarshal(body, &payload); err != nil {
		return report, errors.Wrapf(err, "GET %v returned a non JSON body", url)
	}
	report.Status = payload.Status
	if payload.Status != healthyStatus {
		return report, fmt.Errorf("GET %v reported status %q", url, payload.Status)
	}
	return report, nil
}
