//go:build mage

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Tokyo Station, used when LAT/LNG are not set.
const (
	defaultLat = "35.6812"
	defaultLng = "139.7671"
)

func demoLocation() (string, string) {
	lat, lng := os.Getenv("LAT"), os.Getenv("LNG")
	if lat == "" || lng == "" {
		return defaultLat, defaultLng
	}
	return lat, lng
}

// Search prints the first page of restaurants around LAT/LNG.
func Search() error {
	mg.Deps(Build)
	lat, lng := demoLocation()
	return sh.RunV(filepath.Join(binDir, binName), "search", "--lat", lat, "--lng", lng)
}

// Map fetches every restaurant around LAT/LNG and saves a snapshot to
// map-snapshot.yaml.
func Map() error {
	mg.Deps(Build)
	lat, lng := demoLocation()
	return sh.RunV(filepath.Join(binDir, binName), "map", "--lat", lat, "--lng", lng, "--out", "map-snapshot.yaml")
}
