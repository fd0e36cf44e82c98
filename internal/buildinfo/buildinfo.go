package buildinfo

const Graffiti = " ____      _    ____  \n|  _ \\    / \\  |  _ \\ \n| |_) |  / _ \\ | | | |\n|  _ <  / ___ \\| |_| |\n|_| \\_\\/_/   \\_\\____/ \n\n"

// Set with -ldflags "-X github.com/go-sod/rad/internal/buildinfo.BuildTag=..."
var (
	BuildTag string = "v0.0.0"
	Name     string = "RAD"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
