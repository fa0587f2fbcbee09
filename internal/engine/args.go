package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/wikishell/internal/wikifolder"
)

// Engine modes. An argument list is [folder, mode, modeArgs...].
const (
	ModeInit   = "--init"
	ModeListen = "--listen"
	ModeBuild  = "--build"
)

// BuildTargetIndex is the only build target: a single output/index.html.
const BuildTargetIndex = "index"

// DefaultHost is the listen host used when argv does not name one.
const DefaultHost = "localhost"

// Args is a parsed engine argument list.
type Args struct {
	Folder string
	Mode   string

	// Template is the scaffold used by init mode.
	Template string

	// Host and Port select the listener in listen mode. Port 0 picks a free port.
	Host string
	Port int

	// Target is the build mode output target.
	Target string
}

// ListenArgv returns the argument list for serving folder on port.
func ListenArgv(folder string, port int) []string {
	return []string{folder, ModeListen, "port=" + strconv.Itoa(port)}
}

// BuildArgv returns the argument list for exporting folder.
func BuildArgv(folder string) []string {
	return []string{folder, ModeBuild, BuildTargetIndex}
}

// InitArgv returns the argument list for bootstrapping folder from template.
func InitArgv(folder, template string) []string {
	return []string{folder, ModeInit, template}
}

// ParseArgs validates an engine argument list.
func ParseArgs(argv []string) (Args, error) {
	if len(argv) < 2 {
		return Args{}, errors.New("usage: <folder> --init|--listen|--build [args...]")
	}
	a := Args{Folder: argv[0], Mode: argv[1]}
	if strings.TrimSpace(a.Folder) == "" {
		return Args{}, errors.New("folder is required")
	}
	rest := argv[2:]

	switch a.Mode {
	case ModeInit:
		a.Template = wikifolder.TemplateServer
		if len(rest) > 1 {
			return Args{}, fmt.Errorf("%s takes at most one template name", ModeInit)
		}
		if len(rest) == 1 {
			a.Template = rest[0]
		}
		if !wikifolder.HasTemplate(a.Template) {
			return Args{}, fmt.Errorf("unknown template %q", a.Template)
		}

	case ModeListen:
		a.Host = DefaultHost
		a.Port = -1
		for _, kv := range rest {
			key, val, ok := strings.Cut(kv, "=")
			if !ok {
				return Args{}, fmt.Errorf("listen argument %q is not key=value", kv)
			}
			switch key {
			case "port":
				p, err := strconv.Atoi(val)
				if err != nil || p < 0 || p > 65535 {
					return Args{}, fmt.Errorf("invalid port %q", val)
				}
				a.Port = p
			case "host":
				if val == "" {
					return Args{}, errors.New("host must not be empty")
				}
				a.Host = val
			default:
				return Args{}, fmt.Errorf("unknown listen argument %q", key)
			}
		}
		if a.Port < 0 {
			return Args{}, fmt.Errorf("%s requires port=N", ModeListen)
		}

	case ModeBuild:
		a.Target = BuildTargetIndex
		if len(rest) > 1 {
			return Args{}, fmt.Errorf("%s takes at most one target", ModeBuild)
		}
		if len(rest) == 1 && rest[0] != BuildTargetIndex {
			return Args{}, fmt.Errorf("unknown build target %q", rest[0])
		}

	default:
		return Args{}, fmt.Errorf("unknown mode %q", a.Mode)
	}
	return a, nil
}

// Argv renders a back into an argument list accepted by ParseArgs.
func (a Args) Argv() []string {
	switch a.Mode {
	case ModeInit:
		return InitArgv(a.Folder, a.Template)
	case ModeListen:
		argv := ListenArgv(a.Folder, a.Port)
		if a.Host != "" && a.Host != DefaultHost {
			argv = append(argv, "host="+a.Host)
		}
		return argv
	case ModeBuild:
		return BuildArgv(a.Folder)
	}
	return []string{a.Folder, a.Mode}
}
