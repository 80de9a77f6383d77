package main

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		mainVersion string
		settings    []debug.BuildSetting
		wantVersion string
		wantCommit  string
		wantDate    string
	}{
		{
			name:        "local build without vcs",
			mainVersion: "(devel)",
			wantVersion: "dev",
			wantCommit:  "unknown",
			wantDate:    "unknown",
		},
		{
			name:        "installed module version",
			mainVersion: "v0.4.0",
			wantVersion: "v0.4.0",
			wantCommit:  "unknown",
			wantDate:    "unknown",
		},
		{
			name: "revision and time",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc1234def5678"},
				{Key: "vcs.time", Value: "2026-01-15T10:00:00Z"},
			},
			wantVersion: "dev",
			wantCommit:  "abc1234",
			wantDate:    "2026-01-15T10:00:00Z",
		},
		{
			name: "modified listed before revision",
			settings: []debug.BuildSetting{
				{Key: "vcs.modified", Value: "true"},
				{Key: "vcs.revision", Value: "abc1234def5678"},
			},
			wantVersion: "dev",
			wantCommit:  "abc1234-dirty",
			wantDate:    "unknown",
		},
		{
			name: "short revision ignored",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
				{Key: "vcs.modified", Value: "true"},
			},
			wantVersion: "dev",
			wantCommit:  "unknown",
			wantDate:    "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := &debug.BuildInfo{Main: debug.Module{Version: tt.mainVersion}, Settings: tt.settings}
			v, c, d := versionFromBuildInfo(info)
			assert.Equal(t, tt.wantVersion, v)
			assert.Equal(t, tt.wantCommit, c)
			assert.Equal(t, tt.wantDate, d)
		})
	}
}
