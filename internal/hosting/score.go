package hosting

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

const scoreContentType = "text/csv"

// Score sends feature rows to the endpoint in chunks and returns one
// prediction per row, in input order. An empty batch returns an empty
// result without touching the endpoint.
func Score(ctx context.Context, deployer Deployer, endpoint *Endpoint, rows [][]float64, chunkSize int) ([]float64, error) {
	predictions := make([]float64, 0, len(rows))
	if len(rows) == 0 {
		return predictions, nil
	}
	if chunkSize < 1 {
		return nil, fmt.Errorf("chunk size must be positive")
	}

	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		payload := encodeRows(chunk)
		body, err := deployer.Invoke(ctx, endpoint, payload, scoreContentType)
		if err != nil {
			return nil, err
		}

		decoded, err := decodePredictions(body)
		if err != nil {
			return nil, err
		}
		if len(decoded) != len(chunk) {
			return nil, fmt.Errorf("%w: sent %d rows, got %d predictions", ErrUnexpectedPredictionCount, len(chunk), len(decoded))
		}
		predictions = append(predictions, decoded...)
	}

	log.Infof("scored %d rows against endpoint %s", len(rows), endpoint.EndpointName)
	return predictions, nil
}

func encodeRows(rows [][]float64) []byte {
	var buffer bytes.Buffer
	for _, row := range rows {
		for i, value := range row {
			if i > 0 {
				buffer.WriteByte(',')
			}
			buffer.WriteString(strconv.FormatFloat(value, 'g', -1, 64))
		}
		buffer.WriteByte('\n')
	}
	return buffer.Bytes()
}

// The endpoint answers with scalars separated by commas and/or newlines.
func decodePredictions(body []byte) ([]float64, error) {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return []float64{}, nil
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	predictions := make([]float64, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return nil, fmt.Errorf("malformed prediction %q: %s", field, err)
		}
		predictions = append(predictions, value)
	}
	return predictions, nil
}
