// SPDX-License-Identifier: Apache-2.0

package config

import "net/url"

// Query parameter names recognized on the hosting page URL. These are
// read-only inputs; the resolver never writes them back.
const (
	queryParamAPIBase = "api_base"
	queryParamDebug   = "debug"
	queryParamMock    = "mock"
)

// layerFromQuery builds the transient top layer from URL query parameters.
// api_base is taken raw; debug and mock are true iff the value is the
// literal string "true". Parameters outside the recognized set are ignored.
func layerFromQuery(q url.Values) *Layer {
	layer := &Layer{}

	if q.Has(queryParamAPIBase) {
		v := q.Get(queryParamAPIBase)
		layer.APIBase = &v
	}
	if q.Has(queryParamDebug) {
		v := q.Get(queryParamDebug) == "true"
		layer.DebugMode = &v
	}
	if q.Has(queryParamMock) {
		v := q.Get(queryParamMock) == "true"
		layer.EnableMock = &v
	}

	return layer
}

// OverlayQuery returns s with the recognized query parameters of q applied
// on top, without touching s. Used by the HTTP surface to honor per-request
// page URLs the same way load-time resolution honors the process URL.
func OverlayQuery(s Settings, q url.Values) Settings {
	out := s.Clone()
	layerFromQuery(q).applyTo(&out)
	return out
}
