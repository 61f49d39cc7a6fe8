package handlers

import "net/http"

var buildInfo = struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}{
	Version: "dev",
	Commit:  "unknown",
	Date:    "unknown",
}

// SetBuildInfo records the build identity stamped in at link time.
func SetBuildInfo(version, commit, date string) {
	buildInfo.Version = version
	buildInfo.Commit = commit
	buildInfo.Date = date
}

func GetVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, buildInfo)
}
