package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	lconfig "github.infra.cloudera.com/CAI/AmpModelWorkflow/pkg/config"
)

var ErrNonNumericValue = fmt.Errorf("dataset contains a non-numeric value")

type Config struct {
	// Source is either an http(s) URL or a local file path.
	Source        string        `env:"DATASET_SOURCE"`
	TargetColumn  int           `env:"DATASET_TARGET_COLUMN" envDefault:"0"`
	Delimiter     string        `env:"DATASET_DELIMITER" envDefault:","`
	FetchAttempts uint          `env:"DATASET_FETCH_ATTEMPTS" envDefault:"3"`
	FetchTimeout  time.Duration `env:"DATASET_FETCH_TIMEOUT" envDefault:"1m"`
}

func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	err := lconfig.Parse(&cfg)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Loader struct {
	config *Config
	client *http.Client
}

func NewLoader(cfg *Config) *Loader {
	return &Loader{
		config: cfg,
		client: &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// Load reads the configured source into a Dataset. Remote sources are fetched
// over HTTP with bounded retries; anything else is treated as a file path.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	source := l.config.Source
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return l.fetch(ctx, source)
	}

	file, err := os.Open(source)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset file %s", source)
	}
	defer file.Close()
	return Parse(file, l.config.TargetColumn, l.config.Delimiter)
}

func (l *Loader) fetch(ctx context.Context, url string) (*Dataset, error) {
	var ds *Dataset

	err := retry.Do(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		resp, err := l.client.Do(req)
		if err != nil {
			log.Debugf("dataset fetch attempt failed: %s", err)
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("failed to fetch dataset from %s: %s", url, resp.Status)
		}

		ds, err = Parse(resp.Body, l.config.TargetColumn, l.config.Delimiter)
		if err != nil {
			// A malformed payload will not fix itself on retry.
			return retry.Unrecoverable(err)
		}
		return nil
	}, retry.Attempts(l.config.FetchAttempts), retry.Context(ctx))

	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch dataset from %s", url)
	}
	log.Infof("loaded %d rows with %d features from %s", ds.NumRows(), ds.FeatureWidth(), url)
	return ds, nil
}

// Parse reads delimited numeric text, one observation per line, with the
// target in the given column. Blank lines are skipped; there is no header.
func Parse(r io.Reader, targetColumn int, delimiter string) (*Dataset, error) {
	features := make([][]float64, 0)
	targets := make([]float64, 0)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		cells := strings.Split(text, delimiter)
		if targetColumn < 0 || targetColumn >= len(cells) {
			return nil, fmt.Errorf("line %d: target column %d out of range for %d columns", line, targetColumn, len(cells))
		}

		row := make([]float64, 0, len(cells)-1)
		var target float64
		for i, cell := range cells {
			value, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d column %d: %q", ErrNonNumericValue, line, i, cell)
			}
			if i == targetColumn {
				target = value
			} else {
				row = append(row, value)
			}
		}
		features = append(features, row)
		targets = append(targets, target)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read dataset")
	}

	return New(features, targets)
}
