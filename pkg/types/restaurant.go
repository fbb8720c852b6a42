// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared between the provider
// client, the aggregator, the HTTP server, and the CLI.
//
// The JSON shape mirrors the Hot Pepper Gourmet response so that results can
// be passed through to the front end largely unmodified.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Restaurant is a single shop record as returned by the provider. Records are
// treated as immutable once decoded.
type Restaurant struct {
	// ID is the provider's opaque shop identifier (e.g. "J001234567").
	ID string `json:"id" yaml:"id"`

	Name        string `json:"name" yaml:"name"`
	NameKana    string `json:"name_kana,omitempty" yaml:"name_kana,omitempty"`
	LogoImage   string `json:"logo_image,omitempty" yaml:"logo_image,omitempty"`
	Address     string `json:"address" yaml:"address"`
	StationName string `json:"station_name,omitempty" yaml:"station_name,omitempty"`
	Access      string `json:"access" yaml:"access"`

	// MobileAccess is the abbreviated access text used on small screens.
	MobileAccess string `json:"mobile_access,omitempty" yaml:"mobile_access,omitempty"`

	// Lat and Lng are absent for a small number of shops.
	Lat *float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty" yaml:"lng,omitempty"`

	Genre  GenreInfo  `json:"genre" yaml:"genre"`
	Budget BudgetInfo `json:"budget" yaml:"budget"`
	Catch  string     `json:"catch,omitempty" yaml:"catch,omitempty"`
	Open   string     `json:"open,omitempty" yaml:"open,omitempty"`
	Close  string     `json:"close,omitempty" yaml:"close,omitempty"`

	URLs       ShopURLs   `json:"urls" yaml:"urls"`
	Photo      Photo      `json:"photo" yaml:"photo"`
	CouponURLs CouponURLs `json:"coupon_urls" yaml:"coupon_urls"`
	KtaiCoupon int        `json:"ktai_coupon" yaml:"ktai_coupon"`
}

// HasLocation reports whether the record carries coordinates and can be
// placed on a map.
func (r Restaurant) HasLocation() bool {
	return r.Lat != nil && r.Lng != nil
}

// GenreInfo is the genre block of a shop record.
type GenreInfo struct {
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	Name  string `json:"name" yaml:"name"`
	Catch string `json:"catch,omitempty" yaml:"catch,omitempty"`
}

// BudgetInfo is the budget block of a shop record.
type BudgetInfo struct {
	Code    string `json:"code,omitempty" yaml:"code,omitempty"`
	Name    string `json:"name" yaml:"name"`
	Average string `json:"average,omitempty" yaml:"average,omitempty"`
}

// ShopURLs holds the official page URL.
type ShopURLs struct {
	PC string `json:"pc" yaml:"pc"`
}

// CouponURLs holds coupon page URLs for desktop and smartphone.
type CouponURLs struct {
	PC string `json:"pc,omitempty" yaml:"pc,omitempty"`
	SP string `json:"sp,omitempty" yaml:"sp,omitempty"`
}

// Photo groups the photo URLs by device class.
type Photo struct {
	PC     PhotoSizes `json:"pc" yaml:"pc"`
	Mobile PhotoSizes `json:"mobile" yaml:"mobile"`
}

// PhotoSizes holds large, medium, and small image URLs. The mobile block has
// no medium size.
type PhotoSizes struct {
	L string `json:"l,omitempty" yaml:"l,omitempty"`
	M string `json:"m,omitempty" yaml:"m,omitempty"`
	S string `json:"s,omitempty" yaml:"s,omitempty"`
}

// ProviderError is one entry of the provider's error list.
type ProviderError struct {
	Code    int    `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// SearchResults is the body of the provider's "results" object.
type SearchResults struct {
	APIVersion string       `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Available  int          `json:"results_available" yaml:"results_available"`
	Returned   Count        `json:"results_returned" yaml:"results_returned"`
	Start      int          `json:"results_start" yaml:"results_start"`
	Shop       []Restaurant `json:"shop" yaml:"shop"`

	// Errors is set by the provider instead of the fields above when the
	// request was rejected.
	Errors []ProviderError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Envelope is the top-level provider response document.
type Envelope struct {
	Results SearchResults `json:"results" yaml:"results"`
}

// Count is an integer that the provider encodes as a decimal string
// ("results_returned": "20"). It decodes from either a string or a number
// and always encodes back to a string so downstream consumers see the
// provider's shape.
type Count int

// UnmarshalJSON accepts "20", 20, or null.
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = 0
		return nil
	}
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	if s == "" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid count %q: %w", s, err)
	}
	*c = Count(n)
	return nil
}

// MarshalJSON encodes the count as a quoted decimal string.
func (c Count) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.Itoa(int(c)))), nil
}
