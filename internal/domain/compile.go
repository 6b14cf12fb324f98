package domain

import (
	"errors"
	"fmt"
	"strings"
)

type BuildConfig string

const (
	BuildDebug   BuildConfig = "debug"
	BuildRelease BuildConfig = "release"
)

type Compression string

const (
	CompressionDefault Compression = "default"
	CompressionZlib    Compression = "zlib"
	CompressionSnappy  Compression = "snappy"
	CompressionAll     Compression = "all"
)

// CompileTask is a named build configuration. Compile tasks come from a
// fixed catalog, not from a cartesian product.
type CompileTask struct {
	Name          string
	Tags          []string
	Special       bool
	Config        BuildConfig
	Compression   Compression
	ContinueOnErr bool
	// Options are exported to .evergreen/compile.sh as environment variables.
	Options       map[string]string
	ExtraCommands []Command
}

func (c CompileTask) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("compile task name is required")
	}
	switch c.Config {
	case BuildDebug, BuildRelease, "":
	default:
		return fmt.Errorf("compile task %q: unsupported config %q", c.Name, c.Config)
	}
	switch c.Compression {
	case CompressionDefault, CompressionZlib, CompressionSnappy, CompressionAll, "":
	default:
		return fmt.Errorf("compile task %q: unsupported compression %q", c.Name, c.Compression)
	}
	for key := range c.Options {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("compile task %q: empty option name", c.Name)
		}
	}
	return nil
}

// ScriptOptions returns the full compile.sh environment: the explicit options
// plus the switches implied by build config and compression.
func (c CompileTask) ScriptOptions() map[string]string {
	out := make(map[string]string, len(c.Options)+3)
	for k, v := range c.Options {
		out[k] = v
	}
	if c.Config == BuildRelease {
		out["RELEASE"] = "ON"
	} else {
		out["DEBUG"] = "ON"
	}
	switch c.Compression {
	case CompressionDefault, "":
	default:
		out["SNAPPY"] = onOff(c.Compression == CompressionAll || c.Compression == CompressionSnappy)
		if c.Compression == CompressionAll || c.Compression == CompressionZlib {
			out["ZLIB"] = "BUNDLED"
		} else {
			out["ZLIB"] = "OFF"
		}
	}
	return out
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func (c CompileTask) Clone() CompileTask {
	out := c
	out.Tags = append([]string(nil), c.Tags...)
	if c.Options != nil {
		out.Options = make(map[string]string, len(c.Options))
		for k, v := range c.Options {
			out.Options[k] = v
		}
	}
	out.ExtraCommands = make([]Command, 0, len(c.ExtraCommands))
	for _, cmd := range c.ExtraCommands {
		cmd.Vars = append([]Var(nil), cmd.Vars...)
		if cmd.Params != nil {
			params := *cmd.Params
			cmd.Params = &params
		}
		out.ExtraCommands = append(out.ExtraCommands, cmd)
	}
	return out
}
