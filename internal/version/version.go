package version

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/kbsite/internal/version.Version=v1.0.0".
var Version = "dev"

// Build metadata, also injected via ldflags.
var (
	Commit = ""
	Date   = ""
)

// Summary returns a human-readable version string such as "v1.0.0 (abc1234 2024-03-01)".
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	switch {
	case Commit != "" && Date != "":
		return v + " (" + Commit + " " + Date + ")"
	case Commit != "":
		return v + " (" + Commit + ")"
	case Date != "":
		return v + " (" + Date + ")"
	}
	return v
}
