package version

import (
	"runtime"
)

// Values injected by the build.
var (
	GITVERSION = "v0.0.0-dev"
	GITCOMMIT  = ""
	BUILDDATE  = "unknown"
)

type BuildVersionInfo struct {
	GitVersion string `json:"gitversion"`
	GitCommit  string `json:"gitcommit"`
	BuildDate  string `json:"builddate"`
	GOOS       string `json:"goos"`
	GOARCH     string `json:"goarch"`
}

func Get() *BuildVersionInfo {
	return &BuildVersionInfo{
		GitVersion: GITVERSION,
		GitCommit:  GITCOMMIT,
		BuildDate:  BUILDDATE,
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
	}
}
