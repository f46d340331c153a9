package payload

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"gofaas/internal/errors"
)

// Encode renders the body as JSON, gzips it and base64-encodes the result.
// Identical bodies always produce identical strings: the gzip header carries
// no name or timestamp, map keys are sorted and data_list keeps its order.
func Encode(body *Body) (string, error) {
	raw, err := marshal(body)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize submission body")
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", errors.Wrap(err, "failed to create gzip writer")
	}
	if _, err := zw.Write(raw); err != nil {
		return "", errors.Wrap(err, "failed to compress submission body")
	}
	if err := zw.Close(); err != nil {
		return "", errors.Wrap(err, "failed to compress submission body")
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Decode inverts Encode
func Decode(encoded string) (*Body, error) {
	compressed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("payload is not base64: %w", err))
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("payload is not gzip: %w", err))
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("payload is truncated: %w", err))
	}

	var body Body
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, fmt.Errorf("payload is not a submission body: %w", err))
	}
	return &body, nil
}

// marshal is json.Marshal without HTML escaping or the trailing newline
func marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
