package version

import "fmt"

// These variables are set during build time via -ldflags.
var (
	version   = "unreleased"
	gitCommit = ""
)

type Info struct {
	Version   string
	GitCommit string
}

func Get() Info {
	return Info{
		Version:   version,
		GitCommit: gitCommit,
	}
}

func (i Info) String() string {
	if i.GitCommit == "" {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.GitCommit)
}
