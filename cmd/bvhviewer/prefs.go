package main

import (
	"os"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
)

const prefsFile = ".bvhviewer_prefs.json"

// viewerPrefs holds viewer settings persisted between runs
type viewerPrefs struct {
	Padding      float32 `json:"padding"`
	ShowInternal bool    `json:"showInternal"`
	CameraYaw    float32 `json:"cameraYaw"`
	CameraPitch  float32 `json:"cameraPitch"`
	CameraDist   float32 `json:"cameraDistance"`
}

func defaultPrefs() viewerPrefs {
	return viewerPrefs{
		Padding:      0.5,
		ShowInternal: true,
		CameraYaw:    -135,
		CameraPitch:  30,
		CameraDist:   60,
	}
}

// loadPrefs reads prefs from path. A missing file yields the defaults.
func loadPrefs(path string) (viewerPrefs, error) {
	prefs := defaultPrefs()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return prefs, nil
	}
	if err != nil {
		return prefs, errors.New("reading viewer prefs failed").
			WithTag("path", path).
			Wrap(err)
	}

	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaultPrefs(), errors.New("parsing viewer prefs failed").
			WithTag("path", path).
			Wrap(err)
	}
	if prefs.Padding < 0 {
		prefs.Padding = 0
	}
	if prefs.CameraDist <= 0 {
		prefs.CameraDist = defaultPrefs().CameraDist
	}
	return prefs, nil
}

func savePrefs(path string, prefs viewerPrefs) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return errors.New("encoding viewer prefs failed").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("writing viewer prefs failed").
			WithTag("path", path).
			Wrap(err)
	}

	logs.WithTag("path", path).Debug("viewer prefs saved")
	return nil
}
