/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package prefs

import (
	"encoding/base64"
	"math"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

const (
	queryFontSizeDefault = 18
	queryPaddingDefault  = 64
)

// ImportQuery decodes a shared link's query into a complete record. It
// returns ok=false when q carries no parameters.
//
// code is base64 encoded; darkMode and autoDetectLanguage are true only for
// the literal "true"; fontSize and padding fall back to 18 and 64 when absent
// or not numeric. Every other parameter is taken as given, and fields the
// query does not mention keep their factory defaults. The current record is
// never consulted: an import replaces it wholesale.
func ImportQuery(q url.Values) (Record, bool) {
	if len(q) == 0 {
		return Record{}, false
	}
	r := Defaults()
	r.Code = decodeCode(q.Get("code"))
	r.AutoDetectLanguage = q.Get("autoDetectLanguage") == "true"
	r.DarkMode = q.Get("darkMode") == "true"
	r.FontSize = queryInt(q, "fontSize", queryFontSizeDefault)
	r.Padding = queryInt(q, "padding", queryPaddingDefault)
	if q.Has("title") {
		r.Title = q.Get("title")
	}
	if q.Has("theme") {
		r.Theme = q.Get("theme")
	}
	if q.Has("language") {
		r.Language = q.Get("language")
	}
	if q.Has("fontStyle") {
		r.FontStyle = q.Get("fontStyle")
	}
	if q.Has("windowFrame") {
		r.WindowFrame = WindowFrame(q.Get("windowFrame"))
	}
	if q.Has("controlsLayout") {
		r.ControlsLayout = ControlsLayout(q.Get("controlsLayout"))
	}
	if q.Has("showBackground") {
		r.ShowBackground = q.Get("showBackground") == "true"
	}
	if q.Has("showLineNumbers") {
		r.ShowLineNumbers = q.Get("showLineNumbers") == "true"
	}
	return r.Normalize(), true
}

// ImportURL is ImportQuery over the query part of a full link.
func ImportURL(link string) (Record, bool, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return Record{}, false, err
	}
	r, ok := ImportQuery(u.Query())
	return r, ok, nil
}

// EncodeQuery is the reverse of ImportQuery, used for "copy link".
// The custom image and content mode are not shareable and are omitted.
func EncodeQuery(r Record) url.Values {
	q := url.Values{}
	q.Set("code", base64.StdEncoding.EncodeToString([]byte(r.Code)))
	q.Set("title", r.Title)
	q.Set("theme", r.Theme)
	q.Set("darkMode", strconv.FormatBool(r.DarkMode))
	q.Set("showBackground", strconv.FormatBool(r.ShowBackground))
	q.Set("language", r.Language)
	q.Set("autoDetectLanguage", strconv.FormatBool(r.AutoDetectLanguage))
	q.Set("fontSize", strconv.Itoa(r.FontSize))
	q.Set("fontStyle", r.FontStyle)
	q.Set("padding", strconv.Itoa(r.Padding))
	q.Set("showLineNumbers", strconv.FormatBool(r.ShowLineNumbers))
	q.Set("windowFrame", string(r.WindowFrame))
	q.Set("controlsLayout", string(r.ControlsLayout))
	return q
}

// ShareLink joins base and the encoded record.
func ShareLink(base string, r Record) string {
	u, err := url.Parse(base)
	if err != nil || base == "" {
		return "?" + EncodeQuery(r).Encode()
	}
	u.RawQuery = EncodeQuery(r).Encode()
	return u.String()
}

func decodeCode(s string) string {
	if s == "" {
		return ""
	}
	// Query parsing turns '+' into ' '.
	s = strings.ReplaceAll(s, " ", "+")
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return string(b)
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return string(b)
	}
	return ""
}

func queryInt(q url.Values, key string, def int) int {
	v := strings.TrimSpace(q.Get(key))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(f) && math.Abs(f) < math.MaxInt32 {
		return int(f)
	}
	return def
}

// Bootstrapper applies a URL import to a store at most once per process.
type Bootstrapper struct {
	once sync.Once
}

// Apply imports q into s if this is the first call and q is not empty.
// It reports whether this call replaced the store.
func (b *Bootstrapper) Apply(s *Store, q url.Values) bool {
	applied := false
	b.once.Do(func() {
		if r, ok := ImportQuery(q); ok {
			s.Replace(r)
			applied = true
		}
	})
	return applied
}
