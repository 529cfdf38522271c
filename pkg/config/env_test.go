package lconfig

import (
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"k8s.io/apimachinery/pkg/api/resource"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type TestStruct struct {
	StringVal    string            `env:"STRING_VAL"`
	DefaultValue string            `env:"NON_EXISTANT" envDefault:"Hello"`
	EnvVal       string            `env:"ENV_VAL"`
	IntVal       int               `env:"INT_VAL"`
	BoolVal      bool              `env:"BOOL_VAL"`
	F64Val       float64           `env:"FLOAT64_VAL"`
	F64Array     []float64         `env:"FLOAT64_ARRAY" envSeparator:" "`
	TimeDuration time.Duration     `env:"TIME_DURATION" envDefault:"5s"`
	MapVal       map[string]string `env:"MAP_VAL"`
	QuantityVal  resource.Quantity `env:"QUANTITY_VAL" envDefault:"50Gi"`
}

func TestConfigDir(t *testing.T) {
	dir, err := os.MkdirTemp("", "env")
	if err != nil {
		log.Fatal(err)
	}

	err = os.Setenv("ENV_VAL", "env value here")
	if err != nil {
		log.Fatal(err)
		return
	}

	err = os.Setenv("CONFIG_DIR", dir)
	if err != nil {
		log.Fatal(err)
		return
	}
	defer os.Unsetenv("CONFIG_DIR")

	err = writeTestFiles(dir)
	if err != nil {
		log.Fatal(err)
		return
	}

	var test TestStruct
	err = Parse(&test)
	if err != nil {
		log.Fatal(err)
		return
	}

	assert.Equal(t, "a string value", test.StringVal)
	assert.Equal(t, "Hello", test.DefaultValue)
	assert.Equal(t, "env value here", test.EnvVal)
	assert.Equal(t, 123, test.IntVal)
	assert.Equal(t, true, test.BoolVal)
	assert.True(t, math.Abs(2.2e-308-test.F64Val) < 0.001)
	assert.Equal(t, 3, len(test.F64Array))
	assert.Equal(t, time.Second*5, test.TimeDuration)
	assert.Equal(t, map[string]string{"max_depth": "5", "eta": "0.2"}, test.MapVal)
	assert.Equal(t, int64(50*1024*1024*1024), test.QuantityVal.Value())

	err = os.RemoveAll(dir)
	if err != nil {
		log.Fatal(err)
		return
	}
}

func writeTestFiles(dir string) error {
	values := map[string]string{
		"STRING_VAL":    "a string value",
		"INT_VAL":       "123",
		"BOOL_VAL":      "true",
		"FLOAT64_VAL":   "2.2E-308",
		"FLOAT64_ARRAY": "0.0 0.1 0.2",
		"TIME_DURATION": "5s",
		"MAP_VAL":       `{"max_depth": "5", "eta": "0.2"}`,
	}
	for name, value := range values {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(value), 0600); err != nil {
			return err
		}
	}
	return nil
}
