/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package upload validates image input and feeds it into the preference
// store as a data URI.
package upload

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrNotImage is returned for content that is not an image.
	ErrNotImage = errors.New("not an image")
	// ErrTooLarge is returned when the content exceeds MaxImageBytes.
	ErrTooLarge = errors.New("image too large")
	// ErrBadDataURI is returned by DecodeDataURI for malformed input.
	ErrBadDataURI = errors.New("malformed data uri")
)

// MaxImageBytes bounds accepted images.
const MaxImageBytes = 20 << 20

// Validate accepts only image content. A declared type, when present, must
// be image/*; the sniffed type must be image/* as well. It returns the MIME
// type to record, preferring the sniffed one.
func Validate(data []byte, declaredMIME string) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty content", ErrNotImage)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}
	declared := baseType(declaredMIME)
	if declared != "" && !isImage(declared) {
		return "", fmt.Errorf("%w: declared %s", ErrNotImage, declared)
	}
	sniffed := baseType(mimetype.Detect(data).String())
	if !isImage(sniffed) {
		return "", fmt.Errorf("%w: content is %s", ErrNotImage, sniffed)
	}
	return sniffed, nil
}

// EncodeDataURI renders data as a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	var sb strings.Builder
	sb.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(data)))
	sb.WriteString("data:")
	sb.WriteString(mime)
	sb.WriteString(";base64,")
	sb.WriteString(base64.StdEncoding.EncodeToString(data))
	return sb.String()
}

// DecodeDataURI parses a data URI into its MIME type and payload. Both
// base64 and percent-free plain payloads are accepted.
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrBadDataURI)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing comma", ErrBadDataURI)
	}
	params := strings.Split(meta, ";")
	mime := strings.TrimSpace(params[0])
	if mime == "" {
		mime = "text/plain"
	}
	isB64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isB64 = true
		}
	}
	if !isB64 {
		return mime, []byte(payload), nil
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if b, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrBadDataURI, err)
		}
	}
	return mime, b, nil
}

func baseType(m string) string {
	m, _, _ = strings.Cut(m, ";")
	return strings.ToLower(strings.TrimSpace(m))
}

func isImage(m string) bool { return strings.HasPrefix(m, "image/") }
