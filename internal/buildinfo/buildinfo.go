// Package buildinfo holds version data injected at link time:
//
//	go build -ldflags "-X github.com/studyshare/studyshare-client/internal/buildinfo.buildVersion=v1.0.0 \
//	  -X github.com/studyshare/studyshare-client/internal/buildinfo.buildDate=2026-10-15 \
//	  -X github.com/studyshare/studyshare-client/internal/buildinfo.buildCommit=abc123"
package buildinfo

import (
	"fmt"
	"io"
)

var (
	buildVersion = ""
	buildDate    = ""
	buildCommit  = ""
)

func valueOrNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", valueOrNA(buildVersion))
	fmt.Fprintf(w, "Build date: %s\n", valueOrNA(buildDate))
	fmt.Fprintf(w, "Build commit: %s\n", valueOrNA(buildCommit))
}
